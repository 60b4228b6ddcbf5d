package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateIDDeterminism(t *testing.T) {
	a := NewState("(true p)", "(true q)")
	b := NewState("(true q)", "(true p)", "(true p)")

	assert.Equal(t, StateID(a), StateID(b), "set semantics: order and duplicates are irrelevant")
	assert.Len(t, StateID(a), 64, "SHA-256 hex is 64 characters")
}

func TestStateIDDistinguishesStates(t *testing.T) {
	assert.NotEqual(t, StateID(NewState("(true p)")), StateID(NewState("(true q)")))
	assert.NotEqual(t, StateID(State{}), StateID(NewState("(true p)")))
}

func TestJointMoveIDIsOrderSensitive(t *testing.T) {
	a := JointMoveID([]Move{"mark", "noop"})
	b := JointMoveID([]Move{"noop", "mark"})

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, JointMoveID([]Move{"mark", "noop"}))
}

func TestDomainSeparation(t *testing.T) {
	// The same payload hashed in different domains must not collide.
	state := StateID(NewState("x"))
	moves := JointMoveID([]Move{"x"})
	assert.NotEqual(t, state, moves)
}

func TestCircuitHashIgnoresNames(t *testing.T) {
	spec := CircuitSpec{
		Roles: []Role{"robot"},
		Components: []ComponentSpec{
			{ID: 0, Name: "init", Kind: KindInit},
			{ID: 1, Name: "t", Kind: KindTerminal, Inputs: []int{0}},
		},
	}
	renamed := CircuitSpec{
		Name:  "other",
		Roles: []Role{"robot"},
		Components: []ComponentSpec{
			{ID: 0, Name: "start", Kind: KindInit},
			{ID: 1, Name: "end", Kind: KindTerminal, Inputs: []int{0}},
		},
	}

	h1, err := CircuitHash(spec)
	require.NoError(t, err)
	h2, err := CircuitHash(renamed)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	renamed.Components[1].Kind = KindGoal
	h3, err := CircuitHash(renamed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
