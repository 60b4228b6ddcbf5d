package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/testutil"
)

func runFile(t *testing.T, path string) *Result {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func runInline(t *testing.T, src string, spec ir.CircuitSpec) *Result {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	result, err := RunSpec(s, spec)
	require.NoError(t, err)
	return result
}

func TestRun_LightToggle(t *testing.T) {
	result := runFile(t, "../../testdata/scenarios/light_toggle.yaml")

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"robot"}, result.Roles)
	require.Len(t, result.Trace, 4)
	assert.Equal(t, []string{"UNKNOWN_MOVE", "MOVE_COUNT_MISMATCH"}, result.Trace[2].Rejected)
	assert.Equal(t, map[string]int{"robot": 100}, result.Last().Goals)
	assert.Nil(t, result.Last().Legal, "terminal states list no legal moves")
}

func TestRun_MarkAlternation(t *testing.T) {
	result := runFile(t, "../../testdata/scenarios/mark_alternation.yaml")

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"white", "black"}, result.Roles)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, []string{"mark", "noop"}, result.Trace[0].Moves)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	result := runInline(t, `
name: wrong
description: every expectation here is wrong
circuit: unused
initial:
  state: ["(true on)"]
  terminal: true
  legal:
    robot: [wait]
steps:
  - moves: [toggle]
    expect:
      error: UNKNOWN_MOVE
      goals:
        robot: 0
  - moves: [fly]
`, testutil.LightCircuit())

	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"initial: state = [(true ready)], want [(true on)]",
		"initial: terminal = false, want true",
		"initial: legal(robot) = [toggle wait], want [wait]",
		"steps[0]: expected error UNKNOWN_MOVE, moves were accepted",
		"steps[0]: goal(robot) = 100, want 0",
		"steps[1]: moves [fly] rejected with UNKNOWN_MOVE",
	}, result.Errors)
}

func TestRun_GoalOnNonTerminalState(t *testing.T) {
	result := runInline(t, `
name: early
description: goals are only read on terminal states
circuit: unused
initial:
  goals:
    robot: 0
`, testutil.LightCircuit())

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "initial: goal(robot) expected on a non-terminal state", result.Errors[0])
}

func TestRun_BrokenCircuitRecordsQueryErrors(t *testing.T) {
	result := runInline(t, `
name: broken
description: the stuck role has no legal move
circuit: unused
initial:
  legal:
    greedy: [go]
    stuck: []
`, testutil.BrokenCircuit())

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "NO_LEGAL_MOVES", result.Trace[0].Error)
	assert.Equal(t, []string{}, result.Trace[0].Legal["stuck"])
}

func TestRun_FailedAssertions(t *testing.T) {
	result := runInline(t, `
name: asserts
description: assertions that do not hold
circuit: unused
steps:
  - moves: [toggle]
assertions:
  - type: trace_contains
    sentence: "(true off)"
  - type: trace_order
    sentences: ["(true on)", "(true ready)"]
  - type: trace_count
    role: robot
    move: toggle
    count: 2
  - type: final_state
    goals:
      robot: 0
  - type: replay
`, testutil.LightCircuit())

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4, "replay holds, the rest fail")
	assert.True(t, strings.HasPrefix(result.Errors[0], "Assertion failed: trace_contains"))
	assert.Contains(t, result.Errors[1], "(true ready) first true at step 0, before (true on) at step 1")
	assert.Contains(t, result.Errors[2], "Actual: 1 time(s)")
	assert.Contains(t, result.Errors[3], "Expected: goal(robot) = 0")
	assert.Contains(t, result.Errors[3], "[1] {(true on)}")
}

func TestRun_MachineRejectsCycle(t *testing.T) {
	s, err := LoadScenario("../../testdata/scenarios/light_toggle.yaml")
	require.NoError(t, err)
	s.Circuit = "../../testdata/circuits/cyclic.cue"

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}
