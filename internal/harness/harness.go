package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/fmuharness/internal/engine"
	"github.com/roach88/fmuharness/internal/lockfile"
	"github.com/roach88/fmuharness/internal/params"
	"github.com/roach88/fmuharness/internal/store"
)

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
// It is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. Panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Recorder persists finished runs. *store.Store implements it.
type Recorder interface {
	RecordRun(ctx context.Context, run store.Run) error
}

// Runner executes one scenario against one engine.
type Runner struct {
	Engine   engine.Engine
	Scenario *Scenario

	// Recorder, if set, receives every finished run. Recording errors
	// are logged and do not change the outcome.
	Recorder Recorder

	// IDs defaults to UUIDv7Generator.
	IDs IDGenerator

	// Now defaults to time.Now.
	Now func() time.Time

	// Logger receives process-level messages that must not end up in the
	// log file. Defaults to slog.Default().
	Logger *slog.Logger

	// LogHandler builds the handler for structured lines inside the log
	// file. Defaults to a slog.TextHandler on w.
	LogHandler func(w io.Writer) slog.Handler
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) newID() string {
	if r.IDs != nil {
		return r.IDs.Generate()
	}
	return UUIDv7Generator{}.Generate()
}

func (r *Runner) fileLogger(w io.Writer) *slog.Logger {
	if r.LogHandler != nil {
		return slog.New(r.LogHandler(w))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

// Run executes the lock/log protocol around a single engine call.
//
// The returned error covers only protocol failures: invalid parameters,
// an unwritable lock or log file. Engine and report failures are written
// to the log and surface as Outcome.Err with a failing assertion.
//
// Cancelling ctx stops the engine; the log still gets its trace, done
// marker and the lock file is still removed.
func (r *Runner) Run(ctx context.Context, p params.Params) (*Outcome, error) {
	if r.Engine == nil {
		return nil, errors.New("harness: runner has no engine")
	}
	if r.Scenario == nil {
		return nil, errors.New("harness: runner has no scenario")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	log := r.logger()
	outcome := &Outcome{
		RunID:     r.newID(),
		Scenario:  r.Scenario.Name,
		Engine:    r.Engine.Name(),
		Mode:      r.Scenario.Mode,
		Params:    p,
		StartedAt: r.now(),
	}

	lock, err := lockfile.Acquire(p.LockFile, outcome.Engine)
	if err != nil {
		return nil, err
	}
	log.Debug("lock acquired", "path", lock.Path(), "token", lockfile.RunningToken(outcome.Engine))

	logFile, err := os.Create(p.LogFile)
	if err != nil {
		if relErr := lock.Release(); relErr != nil {
			log.Error("failed to release lock file", "path", lock.Path(), "error", relErr)
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	r.execute(ctx, p, logFile, outcome)

	var errs []error
	if err := logFile.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}
	if err := lock.MarkDone(); err != nil {
		errs = append(errs, err)
	}
	if err := lock.Release(); err != nil {
		errs = append(errs, err)
	}
	outcome.FinishedAt = r.now()

	log.Info("run finished",
		"run_id", outcome.RunID,
		"scenario", outcome.Scenario,
		"passed", outcome.Passed(),
		"failed", outcome.Failed(),
		"duration", outcome.FinishedAt.Sub(outcome.StartedAt),
	)

	if r.Recorder != nil {
		if err := r.Recorder.RecordRun(ctx, outcome.Record()); err != nil {
			log.Warn("failed to record run", "run_id", outcome.RunID, "error", err)
		}
	}

	return outcome, errors.Join(errs...)
}

// execute writes everything between the log header and the done marker.
func (r *Runner) execute(ctx context.Context, p params.Params, w io.Writer, outcome *Outcome) {
	sc := r.Scenario
	fmt.Fprintf(w, "%s log:\n", sc.Name)
	fmt.Fprintln(w, "redirecting output...")

	flog := r.fileLogger(w)
	rep := &reporter{w: w, prefix: p.TestFlag, outcome: outcome}

	if err := r.simulateAndReport(ctx, p, w, flog, rep); err != nil {
		outcome.Err = err
		rep.failure(err)
	}

	fmt.Fprintf(w, "%s done\n", sc.Name)
}

func (r *Runner) simulateAndReport(ctx context.Context, p params.Params, w io.Writer, flog *slog.Logger, rep *reporter) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	sc := r.Scenario
	if d, ok := r.Engine.(engine.Describer); ok && sc.Describe {
		if err := d.Describe(ctx, p.FMUFile, w); err != nil {
			flog.Warn("model description unavailable", "error", err)
		}
	}

	req := engine.Request{
		FMUPath:        p.FMUFile,
		StartTime:      p.Start,
		StopTime:       p.Stop,
		Solver:         sc.Solver,
		OutputInterval: sc.OutputInterval,
		RecordEvents:   sc.RecordEvents,
		Validate:       sc.Validate,
	}
	flog.Info("invoking engine", "engine", r.Engine.Name(), "solver", req.Solver, "t_start", req.StartTime, "t_stop", req.StopTime)

	sol, err := r.Engine.Simulate(ctx, req, w)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if err := sol.Check(); err != nil {
		return fmt.Errorf("invalid solution: %w", err)
	}
	rep.outcome.Samples = sol.Len()
	flog.Info("simulation finished", "samples", sol.Len())

	switch sc.Mode {
	case ModeDump:
		return rep.dump(sc.DumpTag, sol)
	default:
		rep.assertions(sc, sol, p.Stop)
		return nil
	}
}
