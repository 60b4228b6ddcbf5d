package testutil

import "fmt"

// SequentialMatchIDs hands out "match-0001", "match-0002", ... so recorded
// matches have stable IDs in golden output. It satisfies
// engine.MatchIDGenerator. Not safe for concurrent use.
type SequentialMatchIDs struct {
	prefix string
	n      int
}

// NewSequentialMatchIDs returns a generator using prefix, or "match" when
// prefix is empty.
func NewSequentialMatchIDs(prefix string) *SequentialMatchIDs {
	if prefix == "" {
		prefix = "match"
	}
	return &SequentialMatchIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialMatchIDs) Generate() string {
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
