package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fmuharness/internal/params"
)

// NewSimulateCommand creates the simulate command, the named-flag variant
// of run.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HarnessOptions{RootOptions: rootOpts}
	var p params.Params

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scenario with parameters given as flags",
		Long: `Run one simulation with parameters given as named flags.

Example:
  fmuharness simulate --lockfile fmpy.lock --logfile fmpy.log \
    --fmufile BouncingBall.fmu --t_start 0 --t_stop 5 --juliatestflag '>>'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := p.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid parameters", err)
			}
			return runHarness(cmd, opts, p)
		},
	}

	cmd.Flags().StringVar(&p.LockFile, "lockfile", "", "lock file path (required)")
	cmd.Flags().StringVar(&p.LogFile, "logfile", "", "log file path (required)")
	cmd.Flags().StringVar(&p.FMUFile, "fmufile", "", "FMU to simulate (required)")
	cmd.Flags().StringVar(&p.TestFlag, "juliatestflag", "", "prefix for every assertion line")
	cmd.Flags().Float64Var(&p.Start, "t_start", 0, "simulation start time (required)")
	cmd.Flags().Float64Var(&p.Stop, "t_stop", 0, "simulation stop time (required)")
	for _, name := range []string{"lockfile", "logfile", "fmufile", "t_start", "t_stop"} {
		_ = cmd.MarkFlagRequired(name)
	}
	opts.addFlags(cmd)

	return cmd
}
