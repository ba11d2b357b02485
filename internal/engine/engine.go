package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Solver names understood by the FMPy driver.
const (
	SolverCVode = "CVode"
	SolverEuler = "Euler"
)

var (
	// ErrEmptySolution indicates the engine returned no samples.
	ErrEmptySolution = errors.New("engine: solution has no samples")

	// ErrEmptySample indicates a sample without a time field.
	ErrEmptySample = errors.New("engine: sample has no fields")

	// ErrUnordered indicates sample times decrease somewhere in the sequence.
	ErrUnordered = errors.New("engine: sample times are not non-decreasing")
)

// Engine runs one co-simulation and returns its sampled result.
//
// Implementations write their own diagnostic output (solver messages,
// warnings) to diag. The harness points diag at the run's log file.
type Engine interface {
	Name() string
	Simulate(ctx context.Context, req Request, diag io.Writer) (*Solution, error)
}

// Describer is implemented by engines that can print a model summary
// before simulating.
type Describer interface {
	Describe(ctx context.Context, fmuPath string, w io.Writer) error
}

// Request carries the arguments of a single Simulate call.
type Request struct {
	FMUPath        string
	StartTime      float64
	StopTime       float64
	Solver         string
	OutputInterval float64 // 0 leaves the interval to the engine
	RecordEvents   bool
	Validate       bool
}

// Sample is one row of a simulation result. Index 0 is time.
type Sample []float64

// Time returns the sample's time field.
func (s Sample) Time() float64 { return s[0] }

// Field returns the value at index i and whether it exists.
func (s Sample) Field(i int) (float64, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	return s[i], true
}

// Join formats every field and joins them with sep.
func (s Sample) Join(sep string) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = FormatFloat(v)
	}
	return strings.Join(parts, sep)
}

// String renders the sample as a tuple, e.g. "(0.01, 0.9995, -0.0981)".
func (s Sample) String() string {
	return "(" + s.Join(", ") + ")"
}

// Solution is an ordered sequence of samples plus their field names.
type Solution struct {
	Fields  []string
	Samples []Sample
}

// Len returns the number of samples.
func (s *Solution) Len() int { return len(s.Samples) }

// Last returns the final sample. It panics on an empty solution; call
// Check first.
func (s *Solution) Last() Sample { return s.Samples[len(s.Samples)-1] }

// Check verifies the solution is non-empty, every sample has a time
// field and times never decrease.
func (s *Solution) Check() error {
	if s == nil || len(s.Samples) == 0 {
		return ErrEmptySolution
	}
	prev := math.Inf(-1)
	for i, sample := range s.Samples {
		if len(sample) == 0 {
			return fmt.Errorf("%w: sample %d", ErrEmptySample, i)
		}
		if sample.Time() < prev {
			return fmt.Errorf("%w: sample %d at t=%v follows t=%v", ErrUnordered, i, sample.Time(), prev)
		}
		prev = sample.Time()
	}
	return nil
}

// FirstAtOrAfter scans linearly for the first sample whose time is >= t.
// No interpolation is done.
func (s *Solution) FirstAtOrAfter(t float64) (Sample, bool) {
	for _, sample := range s.Samples {
		if len(sample) > 0 && sample.Time() >= t {
			return sample, true
		}
	}
	return nil, false
}

// FormatFloat renders v in shortest round-trip form. Integral values keep
// a ".0" suffix ("5.0") and very large or small magnitudes use an
// exponent without zero padding ("1e-6").
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := ""
		if exp[0] == '-' || exp[0] == '+' {
			if exp[0] == '-' {
				sign = "-"
			}
			exp = exp[1:]
		}
		exp = strings.TrimLeft(exp, "0")
		return mant + "e" + sign + exp
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
