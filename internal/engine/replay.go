package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/machine"
	"github.com/roach88/propnet/internal/store"
)

// ReplayReport describes a recorded match re-executed on a machine.
type ReplayReport struct {
	MatchID string
	Steps   int
	// Complete is true when the match has a result row.
	Complete   bool
	FinalState ir.State
	Goals      []int
}

// Replay re-executes the joint moves recorded for matchID and checks every
// recorded state ID against the state the machine computes. When the match
// has a result, the final state and goals are checked too.
//
// Replay is read-only. Running it twice gives the same report, so it can
// verify a store after every engine change.
//
// circuitHash may be empty to skip the circuit check; roles are always
// compared.
func Replay(ctx context.Context, m *machine.Machine, s *store.Store, matchID, circuitHash string, logger *slog.Logger) (*ReplayReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("match", matchID)

	rec, err := s.ReadMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if circuitHash != "" && rec.CircuitHash != circuitHash {
		return nil, NewCircuitMismatchError(matchID, "hash", rec.CircuitHash, circuitHash)
	}
	if !slices.Equal(rec.Roles, m.Roles()) {
		return nil, NewCircuitMismatchError(matchID, "roles", joinRoles(rec.Roles), joinRoles(m.Roles()))
	}

	steps, err := s.ReadSteps(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	state := m.InitialState()
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if st.Step != i {
			return nil, NewReplayDivergedError(matchID, i, "step number", strconv.Itoa(st.Step), strconv.Itoa(i))
		}
		if got := ir.StateID(state); got != st.StateID {
			log.Error("replay diverged", "step", i, "recorded", st.State.String(), "computed", state.String())
			return nil, NewReplayDivergedError(matchID, i, "state", st.StateID, got)
		}
		next, err := m.NextState(state, st.Moves)
		if err != nil {
			return nil, fmt.Errorf("replay step %d: %w", i, err)
		}
		state = next
	}

	report := &ReplayReport{
		MatchID:    matchID,
		Steps:      len(steps),
		FinalState: state,
	}

	res, ok, err := s.ReadResult(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if !ok {
		log.Info("replayed incomplete match", "steps", len(steps))
		return report, nil
	}

	if got := ir.StateID(state); got != res.FinalStateID {
		return nil, NewReplayDivergedError(matchID, len(steps), "final state", res.FinalStateID, got)
	}
	goals, err := m.Goals(state)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if !slices.Equal(goals, res.Goals) {
		return nil, NewReplayDivergedError(matchID, len(steps), "goals", fmt.Sprint(res.Goals), fmt.Sprint(goals))
	}

	report.Complete = true
	report.Goals = goals
	log.Info("replay verified", "steps", len(steps))
	return report, nil
}

func joinRoles(roles []ir.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
