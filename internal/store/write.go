package store

import (
	"context"
	"fmt"

	"github.com/roach88/propnet/internal/ir"
)

// WriteMatch inserts a match header.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - rewriting the same match
// is a no-op. Other constraint violations still return errors.
func (s *Store) WriteMatch(ctx context.Context, m ir.MatchRecord) error {
	rolesJSON, err := marshalCanonical("roles", m.Roles)
	if err != nil {
		return fmt.Errorf("write match: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matches
		(id, circuit_hash, circuit_name, roles, seq, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		m.ID,
		m.CircuitHash,
		m.CircuitName,
		rolesJSON,
		m.Seq,
		m.EngineVersion,
		m.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write match: %w", err)
	}
	return nil
}

// WriteStep inserts one step of a match.
// The UNIQUE(match_id, step) constraint makes rewrites a no-op; the returned
// flag reports whether a row was inserted. The match must exist.
func (s *Store) WriteStep(ctx context.Context, st ir.StepRecord) (bool, error) {
	stateJSON, err := marshalCanonical("state", st.State)
	if err != nil {
		return false, fmt.Errorf("write step: %w", err)
	}
	moves := st.Moves
	if moves == nil {
		moves = []ir.Move{}
	}
	movesJSON, err := marshalCanonical("moves", moves)
	if err != nil {
		return false, fmt.Errorf("write step: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO steps
		(match_id, step, state_id, state, moves, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id, step) DO NOTHING
	`,
		st.MatchID,
		st.Step,
		st.StateID,
		stateJSON,
		movesJSON,
		st.Seq,
	)
	if err != nil {
		return false, fmt.Errorf("write step: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write step: %w", err)
	}
	return n > 0, nil
}

// WriteResult closes a match. A second result for the same match is
// silently ignored.
func (s *Store) WriteResult(ctx context.Context, r ir.ResultRecord) error {
	stateJSON, err := marshalCanonical("final state", r.FinalState)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	goals := r.Goals
	if goals == nil {
		goals = []int{}
	}
	goalsJSON, err := marshalCanonical("goals", goals)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results
		(match_id, final_state_id, final_state, goals, steps, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO NOTHING
	`,
		r.MatchID,
		r.FinalStateID,
		stateJSON,
		goalsJSON,
		r.Steps,
		r.Seq,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
