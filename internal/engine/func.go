package engine

import (
	"context"
	"io"
)

// Func adapts a function to the Engine interface.
type Func struct {
	EngineName string
	Fn         func(ctx context.Context, req Request, diag io.Writer) (*Solution, error)
}

// Name returns EngineName.
func (f Func) Name() string { return f.EngineName }

// Simulate calls Fn.
func (f Func) Simulate(ctx context.Context, req Request, diag io.Writer) (*Solution, error) {
	return f.Fn(ctx, req, diag)
}
