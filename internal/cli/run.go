package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fmuharness/internal/harness"
	"github.com/roach88/fmuharness/internal/params"
	"github.com/roach88/fmuharness/internal/store"
)

// DefaultScenario is used when --scenario is not given.
const DefaultScenario = "bouncing_ball"

// HarnessOptions holds flags shared by the commands that run the harness.
type HarnessOptions struct {
	*RootOptions
	Scenario string
	Timeout  time.Duration

	// IDs allows overriding the run ID generator (for testing).
	// If nil, defaults to harness.UUIDv7Generator.
	IDs harness.IDGenerator
}

func (o *HarnessOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Scenario, "scenario", DefaultScenario, "built-in scenario name or scenario YAML file")
	cmd.Flags().DurationVar(&o.Timeout, "timeout", 0, "cancel the simulation after this long (0 = no limit)")
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HarnessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <paramfile>",
		Short: "Run a scenario with parameters read from a file",
		Long: `Run one simulation with parameters read from a positional parameter file.

The file holds one field per line:

  lock file
  log file
  FMU file
  test flag prefix   (optional line)
  start time
  stop time

Simulation failures are written to the log file and do not change the
exit code. Parameter errors exit 2 before any file is touched.

Example:
  fmuharness run params.txt
  fmuharness run --scenario neural_fmu --timeout 10m params.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := params.ParseFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid parameters", err)
			}
			return runHarness(cmd, opts, p)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

// runHarness resolves the scenario, wires engine and ledger and runs the
// protocol once.
func runHarness(cmd *cobra.Command, opts *HarnessOptions, p params.Params) error {
	sc, err := harness.ResolveScenario(opts.Scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	r := &harness.Runner{
		Engine:   opts.engine(),
		Scenario: sc,
		IDs:      opts.IDs,
		Logger:   slog.Default(),
	}

	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		r.Recorder = st
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	if opts.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, opts.Timeout)
		defer cancelTimeout()
	}

	slog.Debug("starting run", "scenario", sc.Name, "engine", r.Engine.Name(), "fmu", p.FMUFile)
	outcome, err := r.Run(ctx, p)
	if err != nil {
		if outcome == nil {
			return WrapExitError(ExitCommandError, "run failed", err)
		}
		slog.Error("run cleanup incomplete", "error", err)
	}

	f := opts.formatter(cmd)
	f.VerboseLog("log written to %s", p.LogFile)
	return f.SuccessWithRun(outcome.RunID, summarize(outcome))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, cancelling simulation", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// RunSummary is the command result of run and simulate.
type RunSummary struct {
	RunID    string   `json:"run_id"`
	Scenario string   `json:"scenario"`
	Engine   string   `json:"engine"`
	LogFile  string   `json:"log_file"`
	Samples  int      `json:"samples"`
	Passed   int      `json:"passed"`
	Failed   int      `json:"failed"`
	Error    string   `json:"error,omitempty"`
	Lines    []string `json:"lines,omitempty"`
}

func (s RunSummary) String() string {
	status := "ok"
	if s.Error != "" || s.Failed > 0 {
		status = "FAILED"
	}
	msg := fmt.Sprintf("%s %s: %d samples, %d passed, %d failed (log: %s)",
		s.Scenario, status, s.Samples, s.Passed, s.Failed, s.LogFile)
	if s.Error != "" {
		msg += "\n  error: " + s.Error
	}
	return msg
}

func summarize(o *harness.Outcome) RunSummary {
	s := RunSummary{
		RunID:    o.RunID,
		Scenario: o.Scenario,
		Engine:   o.Engine,
		LogFile:  o.Params.LogFile,
		Samples:  o.Samples,
		Passed:   o.Passed(),
		Failed:   o.Failed(),
	}
	if o.Err != nil {
		s.Error = o.Err.Error()
	}
	for _, a := range o.Assertions {
		s.Lines = append(s.Lines, a.Line)
	}
	return s
}
