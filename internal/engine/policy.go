package engine

import (
	"math/rand/v2"

	"github.com/roach88/propnet/internal/ir"
)

// Policy picks a move for one role. legal is never empty and is in circuit
// order.
type Policy interface {
	Choose(state ir.State, role ir.Role, legal []ir.Move) ir.Move
}

// FirstLegalPolicy always plays the first legal move.
type FirstLegalPolicy struct{}

// Choose implements Policy.
func (FirstLegalPolicy) Choose(_ ir.State, _ ir.Role, legal []ir.Move) ir.Move {
	return legal[0]
}

// RandomPolicy plays a uniformly random legal move.
// Not safe for concurrent use; give each goroutine its own.
type RandomPolicy struct {
	rng *rand.Rand
}

// NewRandomPolicy returns a policy whose choices are fixed by seed.
func NewRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{rng: newRand(seed, 0)}
}

// Choose implements Policy.
func (p *RandomPolicy) Choose(_ ir.State, _ ir.Role, legal []ir.Move) ir.Move {
	return legal[p.rng.IntN(len(legal))]
}

func newRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
