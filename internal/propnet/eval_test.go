package propnet

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/testutil"
)

func mustEvaluator(t *testing.T, spec ir.CircuitSpec) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(mustCircuit(t, spec))
	require.NoError(t, err)
	return e
}

func TestPropagate_EmptyGates(t *testing.T) {
	spec := ir.NewBuilder("empty", "r").
		Add("init", ir.ComponentSpec{Kind: ir.KindInit}).
		Gate("all", ir.KindAnd).
		Gate("any", ir.KindOr).
		Add("terminal", ir.ComponentSpec{Kind: ir.KindTerminal}, "all").
		Add("view", ir.ComponentSpec{Kind: ir.KindView, Sentence: "any"}, "any").
		MustBuild()
	e := mustEvaluator(t, spec)
	c := e.Circuit()

	vals := e.NewValues()
	e.Propagate(vals)

	assert.True(t, vals[idOf(t, c, "all")], "empty conjunction")
	assert.False(t, vals[idOf(t, c, "any")], "empty disjunction")
	assert.True(t, vals[idOf(t, c, "terminal")])
	assert.False(t, vals[idOf(t, c, "view")])
}

func TestPropagate_GateSemantics(t *testing.T) {
	spec := ir.NewBuilder("gates", "r").
		Add("init", ir.ComponentSpec{Kind: ir.KindInit}).
		Add("x", ir.ComponentSpec{Kind: ir.KindInput, Role: "r", Move: "x"}).
		Add("y", ir.ComponentSpec{Kind: ir.KindInput, Role: "r", Move: "y"}).
		Gate("and", ir.KindAnd, "x", "y").
		Gate("or", ir.KindOr, "x", "y").
		Gate("not", ir.KindNot, "x").
		Gate("next", ir.KindTransition, "or").
		Add("terminal", ir.ComponentSpec{Kind: ir.KindTerminal}, "and").
		MustBuild()
	e := mustEvaluator(t, spec)
	c := e.Circuit()

	tests := []struct {
		x, y                bool
		and, or, not, trans bool
	}{
		{false, false, false, false, true, false},
		{true, false, false, true, false, true},
		{false, true, false, true, true, true},
		{true, true, true, true, false, true},
	}
	for _, tt := range tests {
		vals := e.NewValues()
		vals[idOf(t, c, "x")] = tt.x
		vals[idOf(t, c, "y")] = tt.y
		e.Propagate(vals)

		assert.Equal(t, tt.and, vals[idOf(t, c, "and")], "and(%v,%v)", tt.x, tt.y)
		assert.Equal(t, tt.or, vals[idOf(t, c, "or")], "or(%v,%v)", tt.x, tt.y)
		assert.Equal(t, tt.not, vals[idOf(t, c, "not")], "not(%v)", tt.x)
		assert.Equal(t, tt.trans, vals[idOf(t, c, "next")], "transition(%v)", tt.x || tt.y)
		assert.Equal(t, tt.and, vals[idOf(t, c, "terminal")])
	}
}

func TestPropagate_ConstantsSeeded(t *testing.T) {
	e := mustEvaluator(t, testutil.BrokenCircuit())
	c := e.Circuit()
	vals := e.NewValues()

	assert.True(t, vals[idOf(t, c, "yes")])
	assert.False(t, vals[idOf(t, c, "no")])
}

func TestPropagate_Deterministic(t *testing.T) {
	e := mustEvaluator(t, testutil.MarkCircuit())
	c := e.Circuit()

	assign := func() Values {
		vals := e.NewValues()
		vals[idOf(t, c, "cw")] = true
		vals[idOf(t, c, "mb")] = true
		vals[idOf(t, c, "white_mark")] = true
		return vals
	}
	a, b := assign(), assign()
	e.Propagate(a)
	e.Propagate(b)
	assert.Equal(t, a, b)

	// Propagating an already propagated buffer is a fixed point.
	again := append(Values(nil), a...)
	e.Propagate(again)
	assert.Equal(t, a, again)
}

func TestPropagate_BaseNotReadThroughTransition(t *testing.T) {
	e := mustEvaluator(t, testutil.LightCircuit())
	c := e.Circuit()

	vals := e.NewValues()
	vals[idOf(t, c, "does_toggle")] = true
	e.Propagate(vals)

	// The light turns on next step, but not within this pass.
	assert.True(t, vals[idOf(t, c, "next_on")])
	assert.False(t, vals[idOf(t, c, "on")])
	assert.False(t, vals[idOf(t, c, "terminal")])
	assert.True(t, vals[idOf(t, c, "goal_0")])
}

func TestNew_RejectsPropositionReadingTransition(t *testing.T) {
	// q would see next step's p if it were evaluated in this pass.
	spec := ir.NewBuilder("peek", "r").
		Add("init", ir.ComponentSpec{Kind: ir.KindInit}).
		Add("p", ir.ComponentSpec{Kind: ir.KindBase, Sentence: "p"}, "next_p").
		Gate("flip", ir.KindNot, "p").
		Gate("next_p", ir.KindTransition, "flip").
		Add("q", ir.ComponentSpec{Kind: ir.KindView, Sentence: "q"}, "next_p").
		Add("terminal", ir.ComponentSpec{Kind: ir.KindTerminal}, "q").
		MustBuild()

	_, err := New(spec)
	require.Error(t, err)
	assert.True(t, IsStructureError(err))
	assert.Contains(t, err.Error(), "only a base proposition may consume a transition")

	errs := Validate(spec)
	require.Len(t, errs, 1)
	assert.Equal(t, "q", errs[0].Name)
}

func TestPropagate_DeepFanInSinglePass(t *testing.T) {
	const depth = 64
	e := mustEvaluator(t, testutil.Ladder(depth))
	c := e.Circuit()

	// Every gate is visited once: two per layer, the top gate, the
	// transition and three single-input propositions.
	assert.Len(t, e.Ordering(), 2*depth+5)

	vals := e.NewValues()
	vals[idOf(t, c, "p")] = true
	e.Propagate(vals)
	assert.True(t, vals[idOf(t, c, "top")])
	assert.True(t, vals[c.Terminal()])

	vals = e.NewValues()
	e.Propagate(vals)
	assert.False(t, vals[idOf(t, c, "top")])
	assert.True(t, vals[idOf(t, c, "or_63")] == vals[idOf(t, c, "and_63")])
}

func TestPropagate_ConcurrentQueries(t *testing.T) {
	e := mustEvaluator(t, testutil.MarkCircuit())
	c := e.Circuit()
	cw, mw, mb := idOf(t, c, "cw"), idOf(t, c, "mw"), idOf(t, c, "mb")
	terminal := c.Terminal()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(done bool) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				vals := e.NewValues()
				vals[cw] = true
				vals[mw] = true
				vals[mb] = done
				e.Propagate(vals)
				assert.Equal(t, done, vals[terminal])
			}
		}(i%2 == 0)
	}
	wg.Wait()
}

func TestEvaluator_OrderingIsCopy(t *testing.T) {
	e := mustEvaluator(t, testutil.LightCircuit())
	order := e.Ordering()
	order[0] = -1
	assert.NotEqual(t, ID(-1), e.Ordering()[0])
}

func TestWriteDot(t *testing.T) {
	e := mustEvaluator(t, testutil.LightCircuit())
	c := e.Circuit()
	vals := e.NewValues()
	vals[idOf(t, c, "on")] = true
	e.Propagate(vals)

	var buf bytes.Buffer
	require.NoError(t, WriteDot(&buf, c, vals))
	out := buf.String()

	assert.Contains(t, out, `digraph "light" {`)
	assert.Contains(t, out, `n2 [label="on", shape=doublecircle, style=filled, fillcolor=lightgrey];`)
	assert.Contains(t, out, `n6 [label="off", shape=invtrapezium];`)
	assert.Contains(t, out, "n2 -> n6;")
}
