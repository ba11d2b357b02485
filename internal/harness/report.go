package harness

import (
	"errors"
	"fmt"
	"io"

	"github.com/roach88/fmuharness/internal/engine"
)

// FailureReason is the comment of the line written in place of a report
// when the engine call or the report itself fails.
const FailureReason = "exception occurred during simulation"

// PanicError wraps a value recovered from a panic between engine call
// and report.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// reporter writes report lines for one run and mirrors them into the
// outcome.
type reporter struct {
	w       io.Writer
	prefix  string
	outcome *Outcome
}

func (r *reporter) assertions(sc *Scenario, sol *engine.Solution, stop float64) {
	for _, a := range BuildAssertions(sc, sol, stop) {
		line := a.Line(r.prefix)
		fmt.Fprintln(r.w, line)
		r.outcome.AddAssertion(line, a.Pass())
	}
}

func (r *reporter) dump(tag string, sol *engine.Solution) error {
	n, err := WriteDump(r.w, tag, sol)
	if err != nil {
		return err
	}
	r.outcome.Dumped = n
	return nil
}

// failure writes the error trace followed by the synthetic false line.
func (r *reporter) failure(err error) {
	writeTrace(r.w, err)
	line := FailureLine(r.prefix, FailureReason)
	fmt.Fprintln(r.w, line)
	r.outcome.AddAssertion(line, false)
}

// writeTrace prints the wrap chain of err, root cause first. Panics also
// get their goroutine stack.
func writeTrace(w io.Writer, err error) {
	var chain []error
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e)
	}

	fmt.Fprintln(w, "Traceback (most recent error last):")
	for i := len(chain) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "  %s\n", chain[i])
	}

	var pe *PanicError
	if errors.As(err, &pe) && len(pe.Stack) > 0 {
		fmt.Fprintf(w, "%s", pe.Stack)
	}
}
