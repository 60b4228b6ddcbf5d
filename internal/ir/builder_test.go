package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_ResolvesForwardReferences(t *testing.T) {
	spec, err := NewBuilder("fwd", "r").
		Add("p", ComponentSpec{Kind: KindBase, Sentence: "p"}, "next").
		Gate("next", KindTransition, "p").
		Build()
	require.NoError(t, err)

	require.Len(t, spec.Components, 2)
	assert.Equal(t, 0, spec.Components[0].ID)
	assert.Equal(t, "p", spec.Components[0].Name)
	assert.Equal(t, []int{1}, spec.Components[0].Inputs)
	assert.Equal(t, []int{0}, spec.Components[1].Inputs)
	assert.Equal(t, []Role{"r"}, spec.Roles)
}

func TestBuilder_UnknownLabel(t *testing.T) {
	_, err := NewBuilder("bad", "r").
		Gate("g", KindAnd, "missing").
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown input "missing"`)
}

func TestBuilder_DuplicateLabel(t *testing.T) {
	_, err := NewBuilder("dup", "r").
		Gate("g", KindAnd).
		Gate("g", KindOr).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate component label "g"`)
}

func TestBuilder_ZeroInputsStayNil(t *testing.T) {
	spec := NewBuilder("z", "r").Gate("t", KindAnd).MustBuild()
	assert.Nil(t, spec.Components[0].Inputs)
}
