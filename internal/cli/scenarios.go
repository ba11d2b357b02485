package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fmuharness/internal/harness"
)

// NewScenariosCommand creates the scenarios command.
func NewScenariosCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios [name|file]",
		Short: "List built-in scenarios or print one with defaults applied",
		Long: `Without arguments, list the built-in scenarios. With a name or file,
print that scenario as YAML after validation, with every default filled in.

Example:
  fmuharness scenarios
  fmuharness scenarios bouncing_ball`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showScenario(cmd, rootOpts, args[0])
			}
			return listScenarios(cmd, rootOpts)
		},
	}

	return cmd
}

func listScenarios(cmd *cobra.Command, opts *RootOptions) error {
	names := harness.ListBuiltin()
	scenarios := make([]*harness.Scenario, 0, len(names))
	for _, name := range names {
		sc, err := harness.Builtin(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid built-in scenario "+name, err)
		}
		scenarios = append(scenarios, sc)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(scenarios)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCENARIO\tMODE\tSOLVER")
	for i, sc := range scenarios {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", names[i], sc.Name, sc.Mode, sc.Solver)
	}
	return tw.Flush()
}

func showScenario(cmd *cobra.Command, opts *RootOptions, nameOrPath string) error {
	sc, err := harness.ResolveScenario(nameOrPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(sc)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(sc); err != nil {
		return WrapExitError(ExitCommandError, "failed to encode scenario", err)
	}
	return enc.Close()
}
