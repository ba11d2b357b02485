package harness

import (
	"context"
	"fmt"
	"io"

	"github.com/roach88/fmuharness/internal/engine"
	"github.com/roach88/fmuharness/internal/params"
)

// Peek runs a quick simulation without the lock/log protocol and returns
// the second sample, which is the first one past the initial state.
// Engine diagnostics go to diag.
func Peek(ctx context.Context, eng engine.Engine, p params.Params, diag io.Writer) (engine.Sample, error) {
	req := engine.Request{
		FMUPath:      p.FMUFile,
		StartTime:    p.Start,
		StopTime:     p.Stop,
		Solver:       engine.SolverCVode,
		RecordEvents: true,
	}
	sol, err := eng.Simulate(ctx, req, diag)
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	if err := sol.Check(); err != nil {
		return nil, err
	}
	if sol.Len() < 2 {
		return nil, fmt.Errorf("peek needs at least 2 samples, got %d", sol.Len())
	}
	return sol.Samples[1], nil
}
