package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fmuharness/internal/engine"
	"github.com/roach88/fmuharness/internal/harness"
	"github.com/roach88/fmuharness/internal/params"
)

// InputsErrorMessage is printed when the environment lacks a parameter.
const InputsErrorMessage = "Can't read inputs!"

// EnvOptions holds flags for the env command.
type EnvOptions struct {
	*RootOptions

	// Lookup allows overriding environment access (for testing).
	// If nil, defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// NewEnvCommand creates the env command.
func NewEnvCommand(rootOpts *RootOptions) *cobra.Command {
	return newEnvCommand(&EnvOptions{RootOptions: rootOpts})
}

func newEnvCommand(opts *EnvOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Peek at an FMU with parameters from the environment",
		Long: `Simulate the FMU named by FMU_PATH from START to STOP and print the
second sample as a tuple. No lock or log file is involved.

Exits 1 with "Can't read inputs!" when a variable is missing or invalid.

Example:
  FMU_PATH=BouncingBall.fmu START=0 STOP=1 fmuharness env`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, opts)
		},
	}

	return cmd
}

func runEnv(cmd *cobra.Command, opts *EnvOptions) error {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	f := opts.formatter(cmd)

	p, err := params.FromEnv(lookup)
	if err != nil {
		f.Error(CodeInputs, InputsErrorMessage, err.Error())
		return WrapExitError(ExitFailure, "invalid environment", err)
	}
	f.VerboseLog("probing %s from %s to %s", p.FMUFile, engine.FormatFloat(p.Start), engine.FormatFloat(p.Stop))

	diag := io.Discard
	if opts.Verbose {
		diag = f.GetErrWriter()
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	sample, err := harness.Peek(ctx, opts.engine(), p, diag)
	if err != nil {
		slog.Error("peek failed", "fmu", p.FMUFile, "error", err)
		if opts.Format == "json" {
			f.Error(CodePeek, "peek failed", err.Error())
		}
		return WrapExitError(ExitFailure, "peek failed", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]any{
			"fmu":    p.FMUFile,
			"sample": []float64(sample),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), sample.String())
	return nil
}
