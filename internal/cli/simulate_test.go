package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propnet/internal/ir"
)

func TestSimulateLight(t *testing.T) {
	out, err := execute(t, NewSimulateCommand(&RootOptions{Format: "json"}), lightCircuit, "--count", "50", "--seed", "7")
	require.NoError(t, err)

	var result SimulateResult
	require.Equal(t, "ok", decodeData(t, out, &result))
	assert.Equal(t, "light", result.Circuit)
	assert.Equal(t, 50, result.Count)
	assert.Equal(t, 50, result.Terminal)
	require.Len(t, result.Roles, 1)
	assert.Equal(t, ir.Role("robot"), result.Roles[0].Role)
	// The light only ends once it is on, which is worth 100.
	assert.InDelta(t, 100.0, result.Roles[0].MeanGoal, 1e-9)
	assert.GreaterOrEqual(t, result.MinDepth, 1)
	assert.GreaterOrEqual(t, result.MaxDepth, result.MinDepth)
}

func TestSimulateIndependentOfWorkers(t *testing.T) {
	run := func(workers string) SimulateResult {
		out, err := execute(t, NewSimulateCommand(&RootOptions{Format: "json"}),
			markCircuit, "--count", "40", "--seed", "3", "--workers", workers)
		require.NoError(t, err)
		var result SimulateResult
		decodeData(t, out, &result)
		return result
	}

	assert.Equal(t, run("1"), run("4"))
}

func TestSimulateMaxStepsCutsPlayouts(t *testing.T) {
	out, err := execute(t, NewSimulateCommand(&RootOptions{Format: "text"}), lightCircuit,
		"--count", "20", "--max-steps", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "20 playout(s) of light")
}

func TestSimulateText(t *testing.T) {
	out, err := execute(t, NewSimulateCommand(&RootOptions{Format: "text"}), lightCircuit, "--count", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 10 playout(s) of light, 10 terminal")
	assert.Contains(t, out, "mean goal 100.00")
	assert.Contains(t, out, "Depth: min")
}

func TestSimulateInvalidCount(t *testing.T) {
	out, err := execute(t, NewSimulateCommand(&RootOptions{Format: "text"}), lightCircuit, "--count", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeInvalidArg)
}
