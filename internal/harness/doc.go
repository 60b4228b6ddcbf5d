// Package harness runs scripted scenarios against a circuit and checks the
// machine's answers.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: light_toggle
//	description: "What this scenario validates"
//	circuit: ../circuits/light.cue
//	initial:
//	  state: ["(true ready)"]
//	  legal: { robot: [toggle, wait] }
//	steps:
//	  - moves: [toggle]
//	    expect:
//	      terminal: true
//	      goals: { robot: 100 }
//	  - moves: [jump]
//	    expect: { error: UNKNOWN_MOVE }
//	assertions:
//	  - type: trace_order
//	    sentences: ["(true ready)", "(true on)"]
//	  - type: replay
//
// Each step is one joint move in role order. Rejected moves leave the state
// unchanged and are listed on the trace event of that state.
//
// # Recording
//
// Run records accepted steps into a fresh in-memory store under the match
// ID "scenario-<name>", with seq numbers from a deterministic clock. The
// replay assertion re-executes that recording through engine.Replay.
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON trace with
// testdata/golden/<name>.golden. Regenerate with -update.
package harness
