package compiler

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propnet/internal/ir"
)

const tinyCUE = `
name:  "tiny"
roles: ["r"]
components: {
	init:     {kind: "init"}
	p:        {kind: "base", sentence: "p", inputs: ["next_p"]}
	next_p:   {kind: "transition", inputs: ["init"]}
	go:       {kind: "input", sentence: "(does r go)"}
	legal_go: {kind: "legal", sentence: "(legal r go)", inputs: ["p"]}
	terminal: {kind: "terminal", inputs: ["p"]}
	goal:     {kind: "goal", sentence: "(goal r 100)", inputs: ["p"]}
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCircuit_CUEFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tiny.cue", tinyCUE)

	spec, err := LoadCircuit(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", spec.Name)
	assert.Equal(t, []ir.Role{"r"}, spec.Roles)
	require.Len(t, spec.Components, 7)
	assert.Equal(t, ir.Role("r"), spec.Components[3].Role)
	assert.Equal(t, ir.Move("go"), spec.Components[3].Move)
}

func TestLoadCircuit_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.cue", tinyCUE)

	spec, err := LoadCircuit(dir)
	require.NoError(t, err)
	assert.Equal(t, "tiny", spec.Name)
}

func TestLoadCircuit_JSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	spec, err := LoadCircuit(writeFile(t, dir, "tiny.cue", tinyCUE))
	require.NoError(t, err)

	data, err := json.Marshal(spec)
	require.NoError(t, err)
	fromJSON, err := LoadCircuit(writeFile(t, dir, "tiny.json", string(data)))
	require.NoError(t, err)
	assert.Equal(t, spec, fromJSON)

	h1, err := ir.CircuitHash(*spec)
	require.NoError(t, err)
	h2, err := ir.CircuitHash(*fromJSON)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestLoadCircuit_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCircuit(filepath.Join(dir, "missing.cue"))
	assert.True(t, errors.Is(err, ErrNoCircuit))

	_, err = LoadCircuit(writeFile(t, dir, "notes.txt", "hello"))
	assert.True(t, errors.Is(err, ErrNoCircuit))

	_, err = LoadCircuit(writeFile(t, dir, "bad.json", `{"roles": ["r"], "extra": 1}`))
	assert.Error(t, err)

	_, err = LoadCircuit(writeFile(t, dir, "bad.cue", `roles: [`))
	var ce *CompileError
	assert.ErrorAs(t, err, &ce)
}
