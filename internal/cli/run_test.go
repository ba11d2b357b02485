package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fmuharness/internal/params"
	"github.com/roach88/fmuharness/internal/store"
)

type runFiles struct {
	dir, lock, log, params string
}

func newRunFiles(t *testing.T, prefix string) runFiles {
	t.Helper()
	dir := t.TempDir()
	f := runFiles{
		dir:    dir,
		lock:   filepath.Join(dir, "fmpy.lock"),
		log:    filepath.Join(dir, "fmpy.log"),
		params: filepath.Join(dir, "params.txt"),
	}
	lines := []string{f.lock, f.log, "BouncingBall.fmu", prefix, "0.0", "5.0"}
	require.NoError(t, os.WriteFile(f.params, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return f
}

func TestRunCommand_BouncingBall(t *testing.T) {
	f := newRunFiles(t, ">>")

	out, err := execRoot(t, stubEngine(ballSolution(), nil), "run", f.params)
	require.NoError(t, err)
	assert.Contains(t, out, "fmpy-bouncing_ball ok: 5 samples, 3 passed, 0 failed")

	_, statErr := os.Stat(f.lock)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)

	log, err := os.ReadFile(f.log)
	require.NoError(t, err)
	assert.Contains(t, string(log), ">>isapprox(5.0, 5.0; atol=1e-6)")
	assert.True(t, strings.HasSuffix(string(log), "fmpy-bouncing_ball done\n"))
}

func TestRunCommand_EngineFailureKeepsExitZero(t *testing.T) {
	f := newRunFiles(t, "")

	out, err := execRoot(t, stubEngine(nil, errors.New("fmpy not installed")), "run", f.params)
	require.NoError(t, err)
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "fmpy not installed")

	log, err := os.ReadFile(f.log)
	require.NoError(t, err)
	assert.Contains(t, string(log), "false # exception occurred during simulation")
}

func TestRunCommand_ShortParamFile(t *testing.T) {
	dir := t.TempDir()
	paramsPath := filepath.Join(dir, "params.txt")
	lock := filepath.Join(dir, "fmpy.lock")
	require.NoError(t, os.WriteFile(paramsPath, []byte(lock+"\nfmpy.log\nball.fmu\n0.0\n"), 0644))

	_, err := execRoot(t, stubEngine(ballSolution(), nil), "run", paramsPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid parameters")

	_, statErr := os.Stat(lock)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestRunCommand_MissingParamFile(t *testing.T) {
	_, err := execRoot(t, stubEngine(ballSolution(), nil), "run", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_UnknownScenario(t *testing.T) {
	f := newRunFiles(t, "")

	_, err := execRoot(t, stubEngine(ballSolution(), nil), "run", "--scenario", "no_such", f.params)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")
}

func TestRunCommand_JSONAndLedger(t *testing.T) {
	f := newRunFiles(t, ">>")
	dbPath := filepath.Join(f.dir, "runs.db")

	out, err := execRoot(t, stubEngine(ballSolution(), nil), "--format", "json", "--db", dbPath, "run", f.params)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		RunID  string     `json:"run_id"`
		Data   RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 3, resp.Data.Passed)
	assert.Len(t, resp.Data.Lines, 3)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.GetRun(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, "fmpy-bouncing_ball", run.Scenario)
	assert.Equal(t, "BouncingBall.fmu", run.FMUFile)
}

func TestSimulateCommand(t *testing.T) {
	dir := t.TempDir()
	lock := filepath.Join(dir, "fmpy.lock")
	log := filepath.Join(dir, "fmpy.log")

	_, err := execRoot(t, stubEngine(ballSolution(), nil), "simulate",
		"--lockfile", lock, "--logfile", log, "--fmufile", "BouncingBall.fmu",
		"--t_start", "0", "--t_stop", "5", "--juliatestflag", "@test ")
	require.NoError(t, err)

	data, err := os.ReadFile(log)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@test isapprox(5.0, 5.0; atol=1e-6)")
}

func TestSimulateCommand_RequiredFlags(t *testing.T) {
	_, err := execRoot(t, stubEngine(ballSolution(), nil), "simulate", "--fmufile", "x.fmu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestSimulateCommand_NonNumericTime(t *testing.T) {
	_, err := execRoot(t, stubEngine(ballSolution(), nil), "simulate",
		"--lockfile", "a", "--logfile", "b", "--fmufile", "c",
		"--t_start", "zero", "--t_stop", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "t_start")
}

func TestSimulateCommand_NonFiniteTime(t *testing.T) {
	tests := []struct {
		name        string
		start, stop string
	}{
		{"NaN start", "NaN", "5"},
		{"Inf stop", "0", "+Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			lock := filepath.Join(dir, "fmpy.lock")
			log := filepath.Join(dir, "fmpy.log")

			_, err := execRoot(t, stubEngine(ballSolution(), nil), "simulate",
				"--lockfile", lock, "--logfile", log, "--fmufile", "c",
				"--t_start", tt.start, "--t_stop", tt.stop)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.ErrorIs(t, err, params.ErrNotNumeric)

			_, statErr := os.Stat(lock)
			assert.ErrorIs(t, statErr, fs.ErrNotExist)
			_, statErr = os.Stat(log)
			assert.ErrorIs(t, statErr, fs.ErrNotExist)
		})
	}
}

func TestSimulateCommand_StopBeforeStart(t *testing.T) {
	dir := t.TempDir()
	lock := filepath.Join(dir, "fmpy.lock")

	_, err := execRoot(t, stubEngine(ballSolution(), nil), "simulate",
		"--lockfile", lock, "--logfile", filepath.Join(dir, "fmpy.log"), "--fmufile", "c",
		"--t_start", "5", "--t_stop", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, statErr := os.Stat(lock)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}
