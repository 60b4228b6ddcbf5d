package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/propnet/internal/ir"
)

// TraceSnapshot captures the trace of a scenario execution.
// State IDs are left out: they are a function of the state sentences, which
// the snapshot already holds.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Roles        []string     `json:"roles"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		eventMap := map[string]any{
			"step":     ev.Step,
			"state":    stringList(ev.State),
			"terminal": ev.Terminal,
		}
		if ev.Legal != nil {
			legal := make(map[string]any, len(ev.Legal))
			for role, moves := range ev.Legal {
				legal[role] = stringList(moves)
			}
			eventMap["legal"] = legal
		}
		if ev.Goals != nil {
			goals := make(map[string]any, len(ev.Goals))
			for role, g := range ev.Goals {
				goals[role] = g
			}
			eventMap["goals"] = goals
		}
		if len(ev.Moves) > 0 {
			eventMap["moves"] = stringList(ev.Moves)
		}
		if len(ev.Rejected) > 0 {
			eventMap["rejected"] = stringList(ev.Rejected)
		}
		if ev.Error != "" {
			eventMap["error"] = ev.Error
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"roles":         stringList(s.Roles),
		"trace":         traceList,
	}
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// SnapshotJSON returns the canonical JSON snapshot of a result, the content
// of its golden file.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Roles:        result.Roles,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
