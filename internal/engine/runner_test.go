package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/machine"
	"github.com/roach88/propnet/internal/store"
	"github.com/roach88/propnet/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMachine(t *testing.T, spec ir.CircuitSpec) *machine.Machine {
	t.Helper()
	m, err := machine.FromSpec(spec, machine.WithLogger(discardLogger()))
	require.NoError(t, err)
	return m
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "matches.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedMove always plays one move, which must be legal.
type fixedMove ir.Move

func (f fixedMove) Choose(_ ir.State, _ ir.Role, _ []ir.Move) ir.Move { return ir.Move(f) }

func TestRunner_PlayLight(t *testing.T) {
	m := newMachine(t, testutil.LightCircuit())
	r, err := NewRunner(m, FirstLegalPolicy{},
		WithMatchIDs(NewFixedGenerator("m1")),
		WithRunnerLogger(discardLogger()))
	require.NoError(t, err)

	res, err := r.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "m1", res.ID)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, []ir.Move{"toggle"}, res.Steps[0].Moves)
	assert.True(t, res.Steps[0].State.Equal(ir.NewState("(true ready)")))
	assert.True(t, res.FinalState.Equal(ir.NewState("(true on)")))
	assert.Equal(t, []int{100}, res.Goals)
	assert.Equal(t, 0, res.Repeats)
}

func TestRunner_PlayMarkAlternates(t *testing.T) {
	m := newMachine(t, testutil.MarkCircuit())
	r, err := NewRunner(m, FirstLegalPolicy{}, WithRunnerLogger(discardLogger()))
	require.NoError(t, err)

	res, err := r.Play(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Steps, 2)
	assert.Equal(t, []ir.Move{"mark", "noop"}, res.Steps[0].Moves)
	assert.Equal(t, []ir.Move{"noop", "mark"}, res.Steps[1].Moves)
	assert.Equal(t, []int{50, 50}, res.Goals)
	assert.Equal(t, 0, res.Steps[0].Step)
	assert.Equal(t, 1, res.Steps[1].Step)
}

func TestRunner_InitiallyTerminal(t *testing.T) {
	m := newMachine(t, testutil.Ladder(3))
	r, err := NewRunner(m, FirstLegalPolicy{}, WithRunnerLogger(discardLogger()))
	require.NoError(t, err)

	res, err := r.Play(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Steps)
	assert.Equal(t, []int{100}, res.Goals)
}

func TestRunner_QuotaCountsRepeats(t *testing.T) {
	m := newMachine(t, testutil.LightCircuit())
	r, err := NewRunner(m, fixedMove("wait"),
		WithMaxSteps(5),
		WithMatchIDs(NewFixedGenerator("loop")),
		WithRunnerLogger(discardLogger()))
	require.NoError(t, err)

	_, err = r.Play(context.Background())
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))
	assert.True(t, IsStepsExceededError(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "loop", re.MatchID)
	assert.Equal(t, "5", re.Details["max_steps"])
	assert.Equal(t, 0, r.repetitions.HistorySize(), "history is cleared after every match")
}

func TestRunner_Repeats(t *testing.T) {
	m := newMachine(t, testutil.LightCircuit())
	// Waiting from {(true ready)} leads to {} and stays there.
	r, err := NewRunner(m, &waitThenToggle{waits: 3}, WithRunnerLogger(discardLogger()))
	require.NoError(t, err)

	res, err := r.Play(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Steps, 4)
	assert.Equal(t, 2, res.Repeats)
	assert.Equal(t, []int{100}, res.Goals)
}

type waitThenToggle struct{ waits int }

func (p *waitThenToggle) Choose(_ ir.State, _ ir.Role, _ []ir.Move) ir.Move {
	if p.waits > 0 {
		p.waits--
		return "wait"
	}
	return "toggle"
}

func TestRunner_MachineErrorLeavesMatchIncomplete(t *testing.T) {
	s := openStore(t)
	m := newMachine(t, testutil.BrokenCircuit())
	r, err := NewRunner(m, FirstLegalPolicy{},
		WithStore(s, "broken-hash"),
		WithMatchIDs(NewFixedGenerator("b1")),
		WithRunnerLogger(discardLogger()))
	require.NoError(t, err)

	_, err = r.Play(context.Background())
	require.Error(t, err)
	assert.True(t, machine.IsNoLegalMoves(err))

	ids, err := s.FindIncompleteMatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, ids)
}

func TestRunner_RecordsMatch(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	m := newMachine(t, testutil.MarkCircuit())
	r, err := NewRunner(m, FirstLegalPolicy{},
		WithStore(s, "mark-hash"),
		WithClock(testutil.NewDeterministicClock()),
		WithMatchIDs(testutil.NewSequentialMatchIDs("mark")),
		WithRunnerLogger(discardLogger()))
	require.NoError(t, err)

	_, err = r.Play(ctx)
	require.NoError(t, err)

	rec, err := s.ReadMatch(ctx, "mark-0001")
	require.NoError(t, err)
	assert.Equal(t, "mark-hash", rec.CircuitHash)
	assert.Equal(t, "mark", rec.CircuitName)
	assert.Equal(t, []ir.Role{"white", "black"}, rec.Roles)
	assert.Equal(t, int64(1), rec.Seq)

	steps, err := s.ReadSteps(ctx, "mark-0001")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, int64(2), steps[0].Seq)
	assert.Equal(t, ir.StateID(ir.NewState("(control white)")), steps[0].StateID)

	res, ok, err := s.ReadResult(ctx, "mark-0001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{50, 50}, res.Goals)
	assert.Equal(t, 2, res.Steps)
	assert.Equal(t, int64(4), res.Seq)

	last, err := s.GetLastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), last)
}

func TestNewRunner_RolePolicies(t *testing.T) {
	m := newMachine(t, testutil.MarkCircuit())

	_, err := NewRunner(m, nil, WithPolicy("white", FirstLegalPolicy{}))
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeMissingPolicy, re.Code)
	assert.Contains(t, re.Message, "black")

	_, err = NewRunner(m, FirstLegalPolicy{}, WithPolicy("red", FirstLegalPolicy{}))
	assert.True(t, machine.IsUnknownRole(err))

	r, err := NewRunner(m, nil,
		WithPolicy("white", FirstLegalPolicy{}),
		WithPolicy("black", NewRandomPolicy(3)),
		WithRunnerLogger(discardLogger()))
	require.NoError(t, err)
	res, err := r.Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{50, 50}, res.Goals)
}

func TestRunner_CancelledContext(t *testing.T) {
	m := newMachine(t, testutil.LightCircuit())
	r, err := NewRunner(m, FirstLegalPolicy{}, WithRunnerLogger(discardLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Play(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
