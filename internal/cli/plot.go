package cli

import (
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/roach88/fmuharness/internal/engine"
	"github.com/roach88/fmuharness/internal/harness"
)

// PlotOptions holds flags for the plot command.
type PlotOptions struct {
	*RootOptions
	Column int
	Tag    string
	Height int
	Width  int
}

// NewPlotCommand creates the plot command.
func NewPlotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plot <logfile>",
		Short: "Chart one column of a dumped simulation",
		Long: `Read the dump section of a log file written in dump mode and draw one
column against sample index as an ASCII chart.

Example:
  fmuharness plot fmpy.log
  fmuharness plot --tag fmpy-simulation --column 2 fmpy.log`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Column, "column", 1, "field index to plot (0 is time)")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "dump tag to read (default: first dump found)")
	cmd.Flags().IntVar(&opts.Height, "height", 15, "chart height in rows")
	cmd.Flags().IntVar(&opts.Width, "width", 80, "chart width in columns")

	return cmd
}

func runPlot(cmd *cobra.Command, opts *PlotOptions, logPath string) error {
	f, err := os.Open(logPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	defer f.Close()

	samples, err := harness.ReadDump(f, opts.Tag)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read dump", err)
	}

	series, err := column(samples, opts.Column)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot plot", err)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(map[string]any{
			"column": opts.Column,
			"values": series,
		})
	}

	first, last := samples[0].Time(), samples[len(samples)-1].Time()
	graph := asciigraph.Plot(series,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(fmt.Sprintf("field %d, t=%s..%s, %d samples",
			opts.Column, engine.FormatFloat(first), engine.FormatFloat(last), len(samples))),
	)
	fmt.Fprintln(cmd.OutOrStdout(), graph)
	return nil
}

func column(samples []engine.Sample, i int) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("dump has no samples")
	}
	out := make([]float64, len(samples))
	for n, s := range samples {
		v, ok := s.Field(i)
		if !ok {
			return nil, fmt.Errorf("sample %d has no field %d", n, i)
		}
		out[n] = v
	}
	return out, nil
}
