package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"

	"github.com/roach88/propnet/internal/compiler"
	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/machine"
	"github.com/roach88/propnet/internal/store"
	"github.com/roach88/propnet/internal/testutil"
)

// Harness executes one scenario. Every accepted joint move is recorded to
// an in-memory store so the trace can be replayed.
type Harness struct {
	m       *machine.Machine
	clock   *testutil.DeterministicClock
	matchID string
	logger  *slog.Logger
	steps   int
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs on a fresh in-memory database with a deterministic
// clock, so traces are reproducible. A returned error means the scenario
// could not run at all (bad circuit, storage failure); failed expectations
// are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	spec, err := compiler.LoadCircuit(scenario.Circuit)
	if err != nil {
		return nil, fmt.Errorf("load circuit: %w", err)
	}
	return RunSpec(scenario, *spec)
}

// RunSpec executes a scenario against an already loaded circuit.
// scenario.Circuit is ignored.
func RunSpec(scenario *Scenario, spec ir.CircuitSpec) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	m, err := machine.FromSpec(spec, machine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("build machine: %w", err)
	}
	hash, err := ir.CircuitHash(spec)
	if err != nil {
		return nil, fmt.Errorf("hash circuit: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		m:       m,
		clock:   testutil.NewDeterministicClock(),
		matchID: "scenario-" + scenario.Name,
		logger:  logger,
	}
	ctx := context.Background()

	if err := st.WriteMatch(ctx, ir.MatchRecord{
		ID:            h.matchID,
		CircuitHash:   hash,
		CircuitName:   spec.Name,
		Roles:         m.Roles(),
		Seq:           h.clock.Next(),
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}); err != nil {
		return nil, err
	}

	result := NewResult()
	for _, r := range m.Roles() {
		result.Roles = append(result.Roles, string(r))
	}
	state := m.InitialState()
	result.Trace = append(result.Trace, h.observe(state, 0))
	h.check("initial", scenario.Initial, result.Last(), result)

	for i, step := range scenario.Steps {
		label := fmt.Sprintf("steps[%d]", i)
		moves := make([]ir.Move, len(step.Moves))
		for j, mv := range step.Moves {
			moves[j] = ir.Move(mv)
		}

		next, err := m.NextState(state, moves)
		if err != nil {
			code, ok := errorCode(err)
			if !ok {
				return nil, fmt.Errorf("%s: %w", label, err)
			}
			last := result.Last()
			last.Rejected = append(last.Rejected, code)
			if step.Expect == nil || step.Expect.Error != code {
				result.AddError(fmt.Sprintf("%s: moves %v rejected with %s", label, step.Moves, code))
			}
			h.logger.Info("moves rejected", "step", i, "code", code)
			continue
		}
		if step.Expect != nil && step.Expect.Error != "" {
			result.AddError(fmt.Sprintf("%s: expected error %s, moves were accepted", label, step.Expect.Error))
		}

		if _, err := st.WriteStep(ctx, ir.StepRecord{
			MatchID: h.matchID,
			Step:    h.steps,
			StateID: ir.StateID(state),
			State:   state,
			Moves:   moves,
			Seq:     h.clock.Next(),
		}); err != nil {
			return nil, err
		}
		h.steps++
		result.Last().Moves = step.Moves

		state = next
		result.Trace = append(result.Trace, h.observe(state, h.steps))
		h.check(label, step.Expect, result.Last(), result)
	}

	if last := result.Last(); last.Terminal && last.Error == "" {
		goals := make([]int, len(m.Roles()))
		for i, r := range m.Roles() {
			goals[i] = last.Goals[string(r)]
		}
		if err := st.WriteResult(ctx, ir.ResultRecord{
			MatchID:      h.matchID,
			FinalStateID: last.StateID,
			FinalState:   state,
			Goals:        goals,
			Steps:        h.steps,
			Seq:          h.clock.Next(),
		}); err != nil {
			return nil, err
		}
	}

	actx := &AssertionContext{
		Ctx:         ctx,
		Store:       st,
		Machine:     m,
		MatchID:     h.matchID,
		CircuitHash: hash,
		Logger:      logger,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

// observe answers every query about state.
func (h *Harness) observe(state ir.State, step int) TraceEvent {
	ev := TraceEvent{
		Step:     step,
		StateID:  ir.StateID(state),
		State:    sentenceStrings(state),
		Terminal: h.m.IsTerminal(state),
	}

	if !ev.Terminal {
		ev.Legal = make(map[string][]string)
		for _, r := range h.m.Roles() {
			moves, err := h.m.LegalMoves(state, r)
			if err != nil && ev.Error == "" {
				ev.Error, _ = errorCode(err)
			}
			ms := []string{}
			for _, mv := range moves {
				ms = append(ms, string(mv))
			}
			ev.Legal[string(r)] = ms
		}
		return ev
	}

	goals := make(map[string]int)
	for _, r := range h.m.Roles() {
		g, err := h.m.Goal(state, r)
		if err != nil {
			ev.Error, _ = errorCode(err)
			return ev
		}
		goals[string(r)] = g
	}
	ev.Goals = goals
	return ev
}

// check compares one trace event with its expectations.
func (h *Harness) check(label string, exp *Expect, ev *TraceEvent, result *Result) {
	if exp == nil {
		return
	}

	if exp.State != nil {
		want := slices.Clone(exp.State)
		sort.Strings(want)
		if !slices.Equal(want, ev.State) {
			result.AddError(fmt.Sprintf("%s: state = %v, want %v", label, ev.State, want))
		}
	}

	if exp.Terminal != nil && *exp.Terminal != ev.Terminal {
		result.AddError(fmt.Sprintf("%s: terminal = %t, want %t", label, ev.Terminal, *exp.Terminal))
	}

	for _, role := range sortedKeys(exp.Legal) {
		got, ok := ev.Legal[role]
		if !ok {
			result.AddError(fmt.Sprintf("%s: no legal moves recorded for role %s", label, role))
			continue
		}
		if !slices.Equal(got, exp.Legal[role]) {
			result.AddError(fmt.Sprintf("%s: legal(%s) = %v, want %v", label, role, got, exp.Legal[role]))
		}
	}

	for _, role := range sortedKeys(exp.Goals) {
		if !ev.Terminal {
			result.AddError(fmt.Sprintf("%s: goal(%s) expected on a non-terminal state", label, role))
			continue
		}
		got, ok := ev.Goals[role]
		if !ok {
			result.AddError(fmt.Sprintf("%s: goal(%s) undefined (%s)", label, role, ev.Error))
			continue
		}
		if got != exp.Goals[role] {
			result.AddError(fmt.Sprintf("%s: goal(%s) = %d, want %d", label, role, got, exp.Goals[role]))
		}
	}
}

func errorCode(err error) (string, bool) {
	var me *machine.MachineError
	if errors.As(err, &me) {
		return string(me.Code), true
	}
	return "", false
}

func sentenceStrings(s ir.State) []string {
	out := []string{}
	for _, f := range s.Sentences() {
		out = append(out, string(f))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
