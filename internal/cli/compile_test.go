package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propnet/internal/ir"
)

func TestCompileCircuit(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), lightCircuit)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled light: 1 role(s), 17 component(s)")
	assert.Contains(t, out, "legal")
	assert.Contains(t, out, "Hash: ")
}

func TestCompileCircuitJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), lightCircuit)
	require.NoError(t, err)

	var result CompilationResult
	assert.Equal(t, "ok", decodeData(t, out, &result))
	require.NotNil(t, result.Circuit)
	assert.Equal(t, "light", result.Circuit.Name)
	assert.Equal(t, []ir.Role{"robot"}, result.Circuit.Roles)
	assert.Len(t, result.Hash, 64)
}

func TestCompileOutputRoundTrip(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "light.json")

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), lightCircuit, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote circuit to")

	_, err = os.Stat(outputFile)
	require.NoError(t, err)

	// The JSON form compiles to the same circuit.
	var fromCUE, fromJSON CompilationResult
	out, err = execute(t, NewCompileCommand(&RootOptions{Format: "json"}), lightCircuit)
	require.NoError(t, err)
	decodeData(t, out, &fromCUE)
	out, err = execute(t, NewCompileCommand(&RootOptions{Format: "json"}), outputFile)
	require.NoError(t, err)
	decodeData(t, out, &fromJSON)

	assert.Equal(t, fromCUE.Hash, fromJSON.Hash)
}

func TestCompileNonExistentPath(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "/nonexistent/light.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNoCircuit)
}

func TestCompileUnsupportedFile(t *testing.T) {
	path := writeCircuit(t, t.TempDir(), "light.txt", "not a circuit")

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNoCircuit)
}

func TestCompileCUESyntaxError(t *testing.T) {
	path := writeCircuit(t, t.TempDir(), "broken.cue", `name: "broken"
components: {
	init: {kind: "init"
}`)

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "error", decodeData(t, out, nil))
	assert.Contains(t, out, ErrCodeLoadFailed)
}

func TestCompileRejectsInvalidCircuit(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), cyclicCircuit)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeBuildFailed)
}

func TestCompileVerboseOutput(t *testing.T) {
	cmd := NewCompileCommand(&RootOptions{Format: "text", Verbose: true})
	errBuf := &bytes.Buffer{}
	cmd.SetErr(errBuf)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{lightCircuit})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errBuf.String(), `Loaded circuit "light"`)
}

func TestCalculateStats(t *testing.T) {
	spec := &ir.CircuitSpec{
		Name:  "s",
		Roles: []ir.Role{"a", "b"},
		Components: []ir.ComponentSpec{
			{Kind: ir.KindAnd}, {Kind: ir.KindAnd}, {Kind: ir.KindBase},
		},
	}

	stats := calculateStats(spec)
	assert.Equal(t, 2, stats.Roles)
	assert.Equal(t, 3, stats.Components)
	assert.Equal(t, map[string]int{ir.KindAnd: 2, ir.KindBase: 1}, stats.ByKind)
}
