package engine

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

//go:embed driver/fmpy_driver.py
var fmpyDriver string

// DefaultPython is the interpreter used when FMPy.Python is empty.
const DefaultPython = "python3"

// FMPy drives the fmpy Python package in a subprocess.
//
// The driver script is embedded and fed to the interpreter on stdin, so
// the only runtime requirement is an interpreter with fmpy installed.
type FMPy struct {
	// Python is the interpreter to execute. Defaults to DefaultPython.
	Python string

	// Env is appended to the current environment of the subprocess.
	Env []string
}

// NewFMPy returns an FMPy engine using the given interpreter.
func NewFMPy(python string) *FMPy {
	return &FMPy{Python: python}
}

// Name returns "FMPy". The lock file tokens derive from it.
func (e *FMPy) Name() string { return "FMPy" }

// Describe prints the model description of fmuPath to w.
func (e *FMPy) Describe(ctx context.Context, fmuPath string, w io.Writer) error {
	if err := e.run(ctx, []string{"--fmu", fmuPath, "--describe"}, w); err != nil {
		return fmt.Errorf("describe %s: %w", fmuPath, err)
	}
	return nil
}

// Simulate runs the driver and reads the result table it writes.
func (e *FMPy) Simulate(ctx context.Context, req Request, diag io.Writer) (*Solution, error) {
	out, err := os.CreateTemp("", "fmuharness-*.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to create result file: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	if err := e.run(ctx, simulateArgs(req, outPath), diag); err != nil {
		return nil, fmt.Errorf("simulate %s: %w", req.FMUPath, err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open result file: %w", err)
	}
	defer f.Close()

	sol, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", req.FMUPath, err)
	}
	return sol, nil
}

func (e *FMPy) run(ctx context.Context, args []string, diag io.Writer) error {
	python := e.Python
	if python == "" {
		python = DefaultPython
	}

	cmd := exec.CommandContext(ctx, python, append([]string{"-"}, args...)...)
	cmd.Stdin = strings.NewReader(fmpyDriver)
	cmd.Stdout = diag
	cmd.Stderr = diag
	cmd.Env = append(os.Environ(), e.Env...)

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(ctxErr, err)
		}
		return err
	}
	return nil
}

// simulateArgs maps a Request onto driver flags.
func simulateArgs(req Request, outPath string) []string {
	solver := req.Solver
	if solver == "" {
		solver = SolverCVode
	}
	args := []string{
		"--fmu", req.FMUPath,
		"--start", strconv.FormatFloat(req.StartTime, 'g', -1, 64),
		"--stop", strconv.FormatFloat(req.StopTime, 'g', -1, 64),
		"--solver", solver,
		"--out", outPath,
	}
	if req.OutputInterval > 0 {
		args = append(args, "--output-interval", strconv.FormatFloat(req.OutputInterval, 'g', -1, 64))
	}
	if req.RecordEvents {
		args = append(args, "--record-events")
	}
	if req.Validate {
		args = append(args, "--validate")
	}
	return args
}

// ReadCSV parses a result table: a header row of field names followed by
// one numeric row per sample.
func ReadCSV(r io.Reader) (*Solution, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read result table: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptySolution
	}

	sol := &Solution{
		Fields:  records[0],
		Samples: make([]Sample, 0, len(records)-1),
	}
	for i, record := range records[1:] {
		if len(record) != len(sol.Fields) {
			return nil, fmt.Errorf("result row %d: expected %d fields, got %d", i+1, len(sol.Fields), len(record))
		}
		sample := make(Sample, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("result row %d field %q: %w", i+1, sol.Fields[j], err)
			}
			sample[j] = v
		}
		sol.Samples = append(sol.Samples, sample)
	}
	return sol, nil
}
