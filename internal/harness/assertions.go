package harness

import (
	"fmt"
	"math"

	"github.com/roach88/fmuharness/internal/engine"
)

// Assertion is one approximate-equality check, rendered in the syntax the
// consuming test runner evaluates.
type Assertion struct {
	Actual    float64
	Expected  float64
	Tolerance float64
	Comment   string

	// Missing explains why Actual could not be read. A missing assertion
	// renders as a literal false.
	Missing string
}

// Pass reports whether |Actual-Expected| <= Tolerance. NaN never passes.
func (a Assertion) Pass() bool {
	if a.Missing != "" {
		return false
	}
	return math.Abs(a.Actual-a.Expected) <= a.Tolerance
}

// Line renders the assertion behind prefix, e.g.
//
//	>>isapprox(5.0, 5.0; atol=1e-6) # final time
func (a Assertion) Line(prefix string) string {
	if a.Missing != "" {
		return FailureLine(prefix, joinComment(a.Comment, a.Missing))
	}
	line := fmt.Sprintf("%sisapprox(%s, %s; atol=%s)", prefix,
		engine.FormatFloat(a.Actual), engine.FormatFloat(a.Expected), engine.FormatFloat(a.Tolerance))
	if a.Comment != "" {
		line += " # " + a.Comment
	}
	return line
}

// FailureLine renders a line that always evaluates to false.
func FailureLine(prefix, reason string) string {
	return fmt.Sprintf("%sfalse # %s", prefix, reason)
}

func joinComment(comment, reason string) string {
	if comment == "" {
		return reason
	}
	return comment + " (" + reason + ")"
}

// BuildAssertions derives the assertion list of an assert-mode scenario
// from a checked solution. Order: final time, checkpoints, final states.
func BuildAssertions(sc *Scenario, sol *engine.Solution, stop float64) []Assertion {
	var out []Assertion
	last := sol.Last()

	if sc.FinalTime.Check {
		out = append(out, Assertion{
			Actual:    last.Time(),
			Expected:  stop,
			Tolerance: sc.Tolerance,
			Comment:   sc.FinalTime.Comment,
		})
	}

	for _, cp := range sc.Checkpoints {
		a := Assertion{Expected: cp.Expected, Tolerance: sc.Tolerance, Comment: cp.Comment}
		sample, ok := sol.FirstAtOrAfter(cp.Time)
		if !ok {
			a.Missing = fmt.Sprintf("no sample at or after t=%s", engine.FormatFloat(cp.Time))
		} else {
			a.Actual, a.Missing = fieldOf(sample, cp.Field)
		}
		out = append(out, a)
	}

	for _, fc := range sc.FinalStates {
		a := Assertion{Expected: fc.Expected, Tolerance: sc.Tolerance, Comment: fc.Comment}
		a.Actual, a.Missing = fieldOf(last, fc.Field)
		out = append(out, a)
	}

	return out
}

func fieldOf(s engine.Sample, i int) (float64, string) {
	v, ok := s.Field(i)
	if !ok {
		return 0, fmt.Sprintf("sample at t=%s has no field %d", engine.FormatFloat(s.Time()), i)
	}
	return v, ""
}
