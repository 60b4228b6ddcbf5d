package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/machine"
)

// Charge is the outcome of one random playout.
type Charge struct {
	Final ir.State
	// Goals is in role order. Nil when the playout hit the step quota.
	Goals    []int
	Depth    int
	Terminal bool
}

// DepthCharge plays uniformly random joint moves from state until a
// terminal state, then reads every role's goal.
//
// A playout that exceeds maxSteps is not an error: it returns a
// non-terminal Charge. Machine errors (NO_LEGAL_MOVES, ILL_DEFINED_GOAL)
// are returned as-is.
func DepthCharge(ctx context.Context, m machine.StateMachine, state ir.State, rng *rand.Rand, maxSteps int) (Charge, error) {
	roles := m.Roles()
	quota := NewQuotaEnforcer(maxSteps)
	moves := make([]ir.Move, len(roles))

	for !m.IsTerminal(state) {
		if err := ctx.Err(); err != nil {
			return Charge{}, err
		}
		if quota.Check("depth-charge") != nil {
			return Charge{Final: state, Depth: quota.Current() - 1}, nil
		}
		for i, role := range roles {
			legal, err := m.LegalMoves(state, role)
			if err != nil {
				return Charge{}, err
			}
			moves[i] = legal[rng.IntN(len(legal))]
		}
		next, err := m.NextState(state, moves)
		if err != nil {
			return Charge{}, err
		}
		state = next
	}

	goals := make([]int, len(roles))
	for i, role := range roles {
		g, err := m.Goal(state, role)
		if err != nil {
			return Charge{}, err
		}
		goals[i] = g
	}
	return Charge{Final: state, Goals: goals, Depth: quota.Current(), Terminal: true}, nil
}

// SimulateOptions configures Simulate.
type SimulateOptions struct {
	Count    int
	Workers  int // Default: GOMAXPROCS
	Seed     uint64
	MaxSteps int // Default: DefaultMaxSteps
	Logger   *slog.Logger
}

// SimulationReport aggregates a batch of depth charges from the initial
// state.
type SimulationReport struct {
	Roles []ir.Role
	Count int
	// Terminal counts playouts that reached a terminal state. Only these
	// contribute to MeanGoals.
	Terminal  int
	MeanGoals []float64
	MinDepth  int
	MaxDepth  int
	MeanDepth float64
}

// Simulate runs opts.Count depth charges from the initial state across
// opts.Workers goroutines sharing m. Playout i draws from a random source
// seeded with (opts.Seed, i), so the report depends only on the options.
// The first machine error cancels the remaining playouts.
func Simulate(ctx context.Context, m machine.StateMachine, opts SimulateOptions) (*SimulationReport, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("simulate: count must be positive, got %d", opts.Count)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	initial := m.InitialState()
	charges := make([]Charge, opts.Count)

	g, gCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < opts.Count; i += workers {
				c, err := DepthCharge(gCtx, m, initial, newRand(opts.Seed, uint64(i)), maxSteps)
				if err != nil {
					return fmt.Errorf("depth charge %d: %w", i, err)
				}
				charges[i] = c
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("simulation failed", "error", err)
		return nil, err
	}

	report := summarize(m.Roles(), charges)
	logger.Info("simulation finished",
		"count", report.Count,
		"terminal", report.Terminal,
		"workers", workers,
		"min_depth", report.MinDepth,
		"max_depth", report.MaxDepth)
	return report, nil
}

func summarize(roles []ir.Role, charges []Charge) *SimulationReport {
	r := &SimulationReport{
		Roles:     roles,
		Count:     len(charges),
		MeanGoals: make([]float64, len(roles)),
		MinDepth:  charges[0].Depth,
	}
	sums := make([]int, len(roles))
	depthSum := 0
	for _, c := range charges {
		depthSum += c.Depth
		r.MinDepth = min(r.MinDepth, c.Depth)
		r.MaxDepth = max(r.MaxDepth, c.Depth)
		if !c.Terminal {
			continue
		}
		r.Terminal++
		for i, g := range c.Goals {
			sums[i] += g
		}
	}
	r.MeanDepth = float64(depthSum) / float64(len(charges))
	if r.Terminal > 0 {
		for i := range sums {
			r.MeanGoals[i] = float64(sums[i]) / float64(r.Terminal)
		}
	}
	return r
}
