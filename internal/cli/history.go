package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fmuharness/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Scenario string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs from the ledger",
		Long: `List runs recorded by run or simulate, newest first.

Example:
  fmuharness history --db runs.db
  fmuharness history --db runs.db --scenario fmpy-bouncing_ball --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "only runs of this scenario name")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	if opts.DB == "" {
		return NewExitError(ExitCommandError, "history requires --db")
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Scenario, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		if runs == nil {
			runs = []store.Run{}
		}
		return opts.formatter(cmd).Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
		return nil
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSCENARIO\tENGINE\tSAMPLES\tPASS\tFAIL\tDURATION\tSTATUS")
	for _, r := range runs {
		status := "ok"
		if !r.OK() {
			status = "FAILED"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.Scenario, r.Engine, r.Samples, r.Passed, r.Failed,
			r.Duration().Round(time.Millisecond), status)
	}
	tw.Flush()
	fmt.Fprint(cmd.OutOrStdout(), b.String())
	return nil
}
