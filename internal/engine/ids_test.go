package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propnet/internal/testutil"
)

func TestUUIDv7Generator_Version(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Sortable(t *testing.T) {
	gen := UUIDv7Generator{}
	prev := gen.Generate()
	for i := 0; i < 100; i++ {
		next := gen.Generate()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("m1", "m2")
	assert.Equal(t, "m1", gen.Generate())
	assert.Equal(t, "m2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestSequentialMatchIDsSatisfiesGenerator(t *testing.T) {
	var gen MatchIDGenerator = testutil.NewSequentialMatchIDs("match")
	assert.Equal(t, "match-0001", gen.Generate())
}
