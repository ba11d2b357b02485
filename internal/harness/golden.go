package harness

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/fmuharness/internal/params"
)

// StableLogHandler is a text handler without timestamps, so log files
// compare byte for byte across runs.
func StableLogHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
}

// RunWithGolden executes r and compares the resulting log file against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The runner's LogHandler is replaced by StableLogHandler when unset.
// Returns the outcome and any protocol error from Run.
func RunWithGolden(t *testing.T, r *Runner, p params.Params, name string) (*Outcome, error) {
	t.Helper()

	if r.LogHandler == nil {
		r.LogHandler = StableLogHandler
	}

	outcome, err := r.Run(context.Background(), p)
	if err != nil {
		return outcome, err
	}

	logData, err := os.ReadFile(p.LogFile)
	if err != nil {
		return outcome, err
	}

	AssertGolden(t, name, logData)
	return outcome, nil
}

// AssertGolden compares data against testdata/golden/{name}.golden.
func AssertGolden(t *testing.T, name string, data []byte) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
