package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/propnet/internal/ir"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadMatch returns the header of a match.
// Returns sql.ErrNoRows (wrapped) if the match does not exist.
func (s *Store) ReadMatch(ctx context.Context, id string) (ir.MatchRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, circuit_hash, circuit_name, roles, seq, engine_version, ir_version
		FROM matches
		WHERE id = ?
	`, id)
	m, err := scanMatch(row)
	if err != nil {
		return ir.MatchRecord{}, fmt.Errorf("read match %s: %w", id, err)
	}
	return m, nil
}

// ListMatches returns every match header, oldest first.
// Ordering is deterministic: ORDER BY seq ASC, id COLLATE BINARY ASC.
func (s *Store) ListMatches(ctx context.Context) ([]ir.MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, circuit_hash, circuit_name, roles, seq, engine_version, ir_version
		FROM matches
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := []ir.MatchRecord{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// ReadSteps returns the steps of a match in play order.
// Returns an empty slice (not nil) if the match has no steps.
func (s *Store) ReadSteps(ctx context.Context, matchID string) ([]ir.StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT match_id, step, state_id, state, moves, seq
		FROM steps
		WHERE match_id = ?
		ORDER BY step ASC, seq ASC, id ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []ir.StepRecord{}
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// ReadResult returns the result of a match.
// The bool is false, with a nil error, when the match has not finished.
func (s *Store) ReadResult(ctx context.Context, matchID string) (ir.ResultRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT match_id, final_state_id, final_state, goals, steps, seq
		FROM results
		WHERE match_id = ?
	`, matchID)

	var r ir.ResultRecord
	var stateJSON, goalsJSON string
	err := row.Scan(&r.MatchID, &r.FinalStateID, &stateJSON, &goalsJSON, &r.Steps, &r.Seq)
	if err == sql.ErrNoRows {
		return ir.ResultRecord{}, false, nil
	}
	if err != nil {
		return ir.ResultRecord{}, false, fmt.Errorf("read result %s: %w", matchID, err)
	}

	if r.FinalState, err = unmarshalState(stateJSON); err != nil {
		return ir.ResultRecord{}, false, fmt.Errorf("read result %s: %w", matchID, err)
	}
	if r.Goals, err = unmarshalGoals(goalsJSON); err != nil {
		return ir.ResultRecord{}, false, fmt.Errorf("read result %s: %w", matchID, err)
	}
	return r, true, nil
}

func scanMatch(row rowScanner) (ir.MatchRecord, error) {
	var m ir.MatchRecord
	var rolesJSON string
	if err := row.Scan(&m.ID, &m.CircuitHash, &m.CircuitName, &rolesJSON, &m.Seq, &m.EngineVersion, &m.IRVersion); err != nil {
		return ir.MatchRecord{}, err
	}
	roles, err := unmarshalRoles(rolesJSON)
	if err != nil {
		return ir.MatchRecord{}, err
	}
	m.Roles = roles
	return m, nil
}

func scanStep(row rowScanner) (ir.StepRecord, error) {
	var st ir.StepRecord
	var stateJSON, movesJSON string
	if err := row.Scan(&st.MatchID, &st.Step, &st.StateID, &stateJSON, &movesJSON, &st.Seq); err != nil {
		return ir.StepRecord{}, fmt.Errorf("scan step: %w", err)
	}
	state, err := unmarshalState(stateJSON)
	if err != nil {
		return ir.StepRecord{}, err
	}
	moves, err := unmarshalMoves(movesJSON)
	if err != nil {
		return ir.StepRecord{}, err
	}
	st.State = state
	st.Moves = moves
	return st, nil
}
