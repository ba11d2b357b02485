package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fmuharness/internal/harness"
)

func TestScenariosCommand_List(t *testing.T) {
	out, err := execRoot(t, nil, "scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "bouncing_ball")
	assert.Contains(t, out, "fmpy-neuralFMU")
	assert.Contains(t, out, "dump")
}

func TestScenariosCommand_ShowRoundTrips(t *testing.T) {
	out, err := execRoot(t, nil, "scenarios", "bouncing_ball")
	require.NoError(t, err)

	var printed harness.Scenario
	require.NoError(t, yaml.Unmarshal([]byte(out), &printed))
	assert.Equal(t, "fmpy-bouncing_ball", printed.Name)
	assert.Len(t, printed.Checkpoints, 2)

	// The printed form is itself a valid scenario file.
	path := filepath.Join(t.TempDir(), "copy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0644))
	loaded, err := harness.LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, printed.Checkpoints, loaded.Checkpoints)
	assert.Equal(t, 1e-6, loaded.Tolerance)
}

func TestScenariosCommand_Unknown(t *testing.T) {
	_, err := execRoot(t, nil, "scenarios", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
