// Package params reads the invocation parameters for a single harness run.
//
// Parameters arrive in one of three shapes:
//
//   - a positional parameter file, one field per line:
//     lock file, log file, FMU file, [test flag prefix], start time, stop time
//   - named command-line flags (built by the cli package)
//   - the FMU_PATH, START and STOP environment variables
//
// Parsing never touches the lock or log file; callers can rely on a parse
// error meaning nothing on disk has changed.
package params

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment variable names read by FromEnv.
const (
	EnvFMUPath = "FMU_PATH"
	EnvStart   = "START"
	EnvStop    = "STOP"
)

// Sentinel errors for parameter parsing.
var (
	// ErrMissingField indicates a required field is absent or empty.
	ErrMissingField = errors.New("params: missing required field")

	// ErrNotNumeric indicates a time field could not be parsed as a decimal.
	ErrNotNumeric = errors.New("params: field is not numeric")

	// ErrTimeRange indicates the stop time precedes the start time.
	ErrTimeRange = errors.New("params: stop time before start time")

	// ErrPathConflict indicates the lock and log file share a path.
	ErrPathConflict = errors.New("params: lock file and log file are the same path")
)

// Params holds the invocation parameters. It is immutable once read.
type Params struct {
	LockFile string  `json:"lock_file"`
	LogFile  string  `json:"log_file"`
	FMUFile  string  `json:"fmu_file"`
	TestFlag string  `json:"test_flag,omitempty"` // prefix for assertion lines, may be empty
	Start    float64 `json:"t_start"`
	Stop     float64 `json:"t_stop"`
}

// Validate checks that the paths are present and the time range is sane.
func (p Params) Validate() error {
	if p.LockFile == "" {
		return fmt.Errorf("%w: lock file", ErrMissingField)
	}
	if p.LogFile == "" {
		return fmt.Errorf("%w: log file", ErrMissingField)
	}
	if filepath.Clean(p.LockFile) == filepath.Clean(p.LogFile) {
		return fmt.Errorf("%w: %s", ErrPathConflict, p.LockFile)
	}
	return p.validateSimulation()
}

// validateSimulation covers the fields the env variant needs (it has no lock or log).
func (p Params) validateSimulation() error {
	if p.FMUFile == "" {
		return fmt.Errorf("%w: fmu file", ErrMissingField)
	}
	if !isFinite(p.Start) {
		return fmt.Errorf("%w: start time %v is not finite", ErrNotNumeric, p.Start)
	}
	if !isFinite(p.Stop) {
		return fmt.Errorf("%w: stop time %v is not finite", ErrNotNumeric, p.Stop)
	}
	if p.Stop < p.Start {
		return fmt.Errorf("%w: start=%v stop=%v", ErrTimeRange, p.Start, p.Stop)
	}
	return nil
}

// ParseFile reads a positional parameter file.
// See Parse for the accepted layouts.
func ParseFile(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read parameter file: %w", err)
	}
	p, err := Parse(string(data))
	if err != nil {
		return Params{}, fmt.Errorf("parameter file %s: %w", path, err)
	}
	return p, nil
}

// Parse splits text into lines and assigns them to fixed positions.
//
// Six lines carry a test flag prefix in position four:
//
//	lock, log, fmu, prefix, start, stop
//
// Five lines omit it:
//
//	lock, log, fmu, start, stop
//
// Trailing blank lines are ignored. Lines after the sixth are ignored too,
// so a file must not carry anything else after the stop time. Anything
// shorter than five lines fails.
func Parse(text string) (Params, error) {
	lines := splitLines(text)

	var p Params
	var startField, stopField string
	switch {
	case len(lines) >= 6:
		p = Params{LockFile: lines[0], LogFile: lines[1], FMUFile: lines[2], TestFlag: lines[3]}
		startField, stopField = lines[4], lines[5]
	case len(lines) == 5:
		p = Params{LockFile: lines[0], LogFile: lines[1], FMUFile: lines[2]}
		startField, stopField = lines[3], lines[4]
	default:
		return Params{}, fmt.Errorf("%w: expected at least 5 lines, got %d", ErrMissingField, len(lines))
	}

	var err error
	if p.Start, err = parseTime("start time", startField); err != nil {
		return Params{}, err
	}
	if p.Stop, err = parseTime("stop time", stopField); err != nil {
		return Params{}, err
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// FromEnv reads FMU_PATH, START and STOP through lookup (usually os.LookupEnv).
// The returned Params has no lock or log file.
func FromEnv(lookup func(string) (string, bool)) (Params, error) {
	values := make(map[string]string, 3)
	for _, key := range []string{EnvFMUPath, EnvStart, EnvStop} {
		v, ok := lookup(key)
		if !ok {
			return Params{}, fmt.Errorf("%w: environment variable %s", ErrMissingField, key)
		}
		values[key] = v
	}

	p := Params{FMUFile: values[EnvFMUPath]}
	var err error
	if p.Start, err = parseTime(EnvStart, values[EnvStart]); err != nil {
		return Params{}, err
	}
	if p.Stop, err = parseTime(EnvStop, values[EnvStop]); err != nil {
		return Params{}, err
	}
	if err := p.validateSimulation(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func parseTime(name, field string) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || !isFinite(v) {
		return 0, fmt.Errorf("%w: %s %q", ErrNotNumeric, name, field)
	}
	return v, nil
}

// isFinite rejects NaN and both infinities, which ParseFloat accepts.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// splitLines splits on LF, drops a CR before each LF and trims trailing
// blank lines. Interior lines are kept verbatim so paths with spaces survive.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
