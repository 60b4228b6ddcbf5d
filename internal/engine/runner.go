package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/machine"
	"github.com/roach88/propnet/internal/store"
)

// MatchResult is the outcome of one played match.
type MatchResult struct {
	ID         string
	Steps      []ir.StepRecord
	FinalState ir.State
	Goals      []int
	// Repeats counts steps whose state had already been visited.
	Repeats int
}

// Runner plays matches on one machine.
//
// Thread-safety model:
//   - Play must not be called concurrently on one Runner: policies and the
//     quota are per-match state.
//   - Separate Runners may share a machine and a store.
type Runner struct {
	m           *machine.Machine
	policies    []Policy
	overrides   []roleOverride
	store       *store.Store
	circuitHash string
	clock       SeqSource
	ids         MatchIDGenerator
	maxSteps    int
	repetitions *RepetitionDetector
	logger      *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

type roleOverride struct {
	role   ir.Role
	policy Policy
}

// WithPolicy sets the policy for one role, overriding the default.
// Unknown roles are reported by NewRunner.
func WithPolicy(role ir.Role, p Policy) RunnerOption {
	return func(r *Runner) {
		r.overrides = append(r.overrides, roleOverride{role: role, policy: p})
	}
}

// WithStore records every match to s. circuitHash is stored with the match
// so Replay can refuse recordings of other circuits.
func WithStore(s *store.Store, circuitHash string) RunnerOption {
	return func(r *Runner) {
		r.store = s
		r.circuitHash = circuitHash
	}
}

// WithClock sets the seq source for recorded rows.
func WithClock(c SeqSource) RunnerOption {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithMatchIDs sets the match ID generator. Default: UUIDv7Generator.
func WithMatchIDs(g MatchIDGenerator) RunnerOption {
	return func(r *Runner) {
		r.ids = g
	}
}

// WithMaxSteps sets the step quota per match. Default: DefaultMaxSteps.
func WithMaxSteps(n int) RunnerOption {
	return func(r *Runner) {
		r.maxSteps = n
	}
}

// WithRunnerLogger sets the logger. Default: slog.Default().
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner returns a Runner where every role plays def unless overridden
// with WithPolicy.
func NewRunner(m *machine.Machine, def Policy, opts ...RunnerOption) (*Runner, error) {
	roles := m.Roles()
	r := &Runner{
		m:           m,
		policies:    make([]Policy, len(roles)),
		clock:       NewClock(),
		ids:         UUIDv7Generator{},
		maxSteps:    DefaultMaxSteps,
		repetitions: NewRepetitionDetector(),
		logger:      slog.Default(),
	}
	for i := range r.policies {
		r.policies[i] = def
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, o := range r.overrides {
		i, ok := m.Circuit().RoleIndex(o.role)
		if !ok {
			return nil, machine.NewUnknownRoleError(o.role)
		}
		r.policies[i] = o.policy
	}
	for i, p := range r.policies {
		if p == nil {
			return nil, &RuntimeError{
				Code:    ErrCodeMissingPolicy,
				Message: fmt.Sprintf("no policy for role %s", roles[i]),
				Step:    -1,
			}
		}
	}
	return r, nil
}

// Play plays one match to a terminal state.
//
// Errors from the machine (NO_LEGAL_MOVES, ILL_DEFINED_GOAL) end the match
// without a result row; so does exceeding the step quota (QUOTA_EXCEEDED).
// Such matches show up in store.FindIncompleteMatches.
func (r *Runner) Play(ctx context.Context) (*MatchResult, error) {
	id := r.ids.Generate()
	roles := r.m.Roles()
	log := r.logger.With("match", id)
	defer r.repetitions.Clear(id)

	if r.store != nil {
		err := r.store.WriteMatch(ctx, ir.MatchRecord{
			ID:            id,
			CircuitHash:   r.circuitHash,
			CircuitName:   r.m.Circuit().Name(),
			Roles:         roles,
			Seq:           r.clock.Next(),
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("play: %w", err)
		}
	}
	log.Info("match started", "circuit", r.m.Circuit().Name(), "roles", len(roles))

	res := &MatchResult{ID: id}
	quota := NewQuotaEnforcer(r.maxSteps)
	state := r.m.InitialState()

	for step := 0; !r.m.IsTerminal(state); step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := quota.Check(id); err != nil {
			log.Error("max steps quota exceeded", "steps", quota.Current(), "max_steps", r.maxSteps)
			return nil, fmt.Errorf("%w: %w", NewQuotaError(id, quota.Current(), r.maxSteps), err)
		}

		stateID := ir.StateID(state)
		if first, repeated := r.repetitions.Visit(id, stateID, step); repeated {
			res.Repeats++
			log.Debug("state repeated", "step", step, "first_seen", first, "state_id", stateID)
		}

		moves := make([]ir.Move, len(roles))
		for i, role := range roles {
			legal, err := r.m.LegalMoves(state, role)
			if err != nil {
				return nil, fmt.Errorf("play step %d: %w", step, err)
			}
			moves[i] = r.policies[i].Choose(state, role, legal)
		}

		rec := ir.StepRecord{
			MatchID: id,
			Step:    step,
			StateID: stateID,
			State:   state,
			Moves:   moves,
		}
		if r.store != nil {
			rec.Seq = r.clock.Next()
			if _, err := r.store.WriteStep(ctx, rec); err != nil {
				return nil, fmt.Errorf("play step %d: %w", step, err)
			}
		}
		res.Steps = append(res.Steps, rec)
		log.Debug("step played", "step", step, "moves", moves)

		next, err := r.m.NextState(state, moves)
		if err != nil {
			return nil, fmt.Errorf("play step %d: %w", step, err)
		}
		state = next
	}

	goals, err := r.m.Goals(state)
	if err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}
	res.FinalState = state
	res.Goals = goals

	if r.store != nil {
		err := r.store.WriteResult(ctx, ir.ResultRecord{
			MatchID:      id,
			FinalStateID: ir.StateID(state),
			FinalState:   state,
			Goals:        goals,
			Steps:        len(res.Steps),
			Seq:          r.clock.Next(),
		})
		if err != nil {
			return nil, fmt.Errorf("play: %w", err)
		}
	}
	log.Info("match finished", "steps", len(res.Steps), "goals", goals, "repeats", res.Repeats)
	return res, nil
}
