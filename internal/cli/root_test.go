package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fmuharness/internal/engine"
)

func ballSolution() *engine.Solution {
	return &engine.Solution{
		Fields: []string{"time", "h", "v"},
		Samples: []engine.Sample{
			{0.0, 1.0, 0.0},
			{0.25, 0.69, -2.45},
			{0.5, 0.3456658910552819, 2.6},
			{1.0, 0.6587682981502954, -0.5},
			{5.0, 0.0, 0.0},
		},
	}
}

func stubEngine(sol *engine.Solution, err error) func() engine.Engine {
	return func() engine.Engine {
		return engine.Func{
			EngineName: "FMPy",
			Fn: func(context.Context, engine.Request, io.Writer) (*engine.Solution, error) {
				return sol, err
			},
		}
	}
}

// execRoot runs the full command tree with a stub engine and returns stdout.
func execRoot(t *testing.T, eng func() engine.Engine, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCommand(&RootOptions{NewEngine: eng})
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fmuharness", cmd.Use)
	assert.Contains(t, cmd.Long, "lock-file/log-file")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "simulate", "env", "plot", "history", "scenarios"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	pythonFlag := cmd.PersistentFlags().Lookup("python")
	require.NotNil(t, pythonFlag)
	assert.Equal(t, engine.DefaultPython, pythonFlag.DefValue)
}

func TestSimulateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	simCmd, _, err := cmd.Find([]string{"simulate"})
	require.NoError(t, err)

	for _, name := range []string{"t_start", "t_stop", "fmufile", "logfile", "lockfile", "juliatestflag", "scenario", "timeout"} {
		assert.NotNil(t, simCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execRoot(t, nil, "--format", "invalid", "scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDefaultEngineIsFMPy(t *testing.T) {
	opts := &RootOptions{Python: "/opt/python3"}
	e, ok := opts.engine().(*engine.FMPy)
	require.True(t, ok)
	assert.Equal(t, "/opt/python3", e.Python)
}
