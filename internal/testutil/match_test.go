package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialMatchIDs(t *testing.T) {
	gen := NewSequentialMatchIDs("")
	assert.Equal(t, "match-0001", gen.Generate())
	assert.Equal(t, "match-0002", gen.Generate())

	custom := NewSequentialMatchIDs("sim")
	assert.Equal(t, "sim-0001", custom.Generate())
}
