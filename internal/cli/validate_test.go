package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propnet/internal/analysis"
	"github.com/roach88/propnet/internal/compiler"
)

// goalGap has a terminal assignment with no true goal: terminal holds
// whenever p does, the only goal needs q as well.
const goalGap = `
name:  "gap"
roles: ["r"]
components: {
	init:     {kind: "init"}
	p:        {kind: "base", sentence: "p", inputs: ["next_p"]}
	q:        {kind: "base", sentence: "q", inputs: ["next_q"]}
	next_p:   {kind: "transition", inputs: ["init"]}
	next_q:   {kind: "transition", inputs: ["init"]}
	go:       {kind: "input", sentence: "(does r go)"}
	both:     {kind: "and", inputs: ["p", "q"]}
	legal_go: {kind: "legal", sentence: "(legal r go)", inputs: ["init"]}
	terminal: {kind: "terminal", inputs: ["p"]}
	goal:     {kind: "goal", sentence: "(goal r 100)", inputs: ["both"]}
}
`

func TestValidateValidCircuit(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), lightCircuit)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Circuit valid")
}

func TestValidateValidCircuitJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), markCircuit)
	require.NoError(t, err)

	var result ValidationResult
	assert.Equal(t, "ok", decodeData(t, out, &result))
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateCycle(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), cyclicCircuit)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	assert.Equal(t, "error", decodeData(t, out, &result))
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, compiler.ErrCycle, result.Errors[0].Code)
}

func TestValidateCycleText(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), cyclicCircuit)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrCycle)
}

func TestValidateGoalOutOfRange(t *testing.T) {
	path := writeCircuit(t, t.TempDir(), "range.cue", `
name:  "range"
roles: ["r"]
components: {
	init:     {kind: "init"}
	p:        {kind: "base", sentence: "p", inputs: ["next_p"]}
	next_p:   {kind: "transition", inputs: ["init"]}
	go:       {kind: "input", sentence: "(does r go)"}
	legal_go: {kind: "legal", sentence: "(legal r go)", inputs: ["p"]}
	terminal: {kind: "terminal", inputs: ["p"]}
	goal:     {kind: "goal", sentence: "(goal r 150)", inputs: ["p"]}
}
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	decodeData(t, out, &result)
	codes := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		codes[i] = e.Code
	}
	assert.Contains(t, codes, compiler.ErrGoalRange)
}

func TestValidateReportsWarnings(t *testing.T) {
	path := writeCircuit(t, t.TempDir(), "gap.cue", goalGap)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var result ValidationResult
	assert.Equal(t, "ok", decodeData(t, out, &result))
	assert.True(t, result.Valid)

	var codes []string
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, analysis.CodeTerminalWithoutGoal)
}

func TestValidateStrictFailsOnWarnings(t *testing.T) {
	path := writeCircuit(t, t.TempDir(), "gap.cue", goalGap)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "--strict found warnings")
	assert.Contains(t, out, analysis.CodeTerminalWithoutGoal)
}

func TestValidateNonExistentPath(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/dir")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNoCircuit)
}

func TestValidateCircuitHelper(t *testing.T) {
	errs, warnings, err := ValidateCircuit(context.Background(), lightCircuit)
	require.NoError(t, err)
	assert.Empty(t, errs)
	for _, w := range warnings {
		assert.NotEqual(t, analysis.LevelWarning, w.Level, "unexpected warning %s: %s", w.Code, w.Message)
	}

	errs, _, err = ValidateCircuit(context.Background(), cyclicCircuit)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Equal(t, compiler.ErrCycle, errs[0].Code)

	_, _, err = ValidateCircuit(context.Background(), "/nonexistent/dir")
	require.Error(t, err)
}
