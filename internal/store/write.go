package store

import (
	"context"
	"fmt"
	"time"
)

// Run is one recorded harness invocation.
type Run struct {
	ID         string         `json:"id"`
	Scenario   string         `json:"scenario"`
	Engine     string         `json:"engine"`
	FMUFile    string         `json:"fmu_file"`
	Start      float64        `json:"t_start"`
	Stop       float64        `json:"t_stop"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Samples    int            `json:"samples"`
	Passed     int            `json:"passed"`
	Failed     int            `json:"failed"`
	Error      string         `json:"error,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
}

// Duration returns the wall-clock time the run took.
func (r Run) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// OK reports whether the run finished without error and without failed assertions.
func (r Run) OK() bool { return r.Error == "" && r.Failed == 0 }

// RecordRun inserts a run into the ledger.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
//
// Params are serialized to canonical JSON.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("record run: empty id")
	}

	params := run.Params
	if params == nil {
		params = map[string]any{}
	}
	paramsJSON, err := MarshalCanonical(params)
	if err != nil {
		return fmt.Errorf("record run: marshal params: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, engine, fmu_file, t_start, t_stop, started_at, finished_at,
		 samples, passed, failed, error, params)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.Engine,
		run.FMUFile,
		run.Start,
		run.Stop,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.Samples,
		run.Passed,
		run.Failed,
		run.Error,
		string(paramsJSON),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
