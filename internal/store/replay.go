package store

import (
	"context"
	"fmt"
)

// FindIncompleteMatches returns the IDs of matches that have no result row,
// oldest first. These are matches interrupted before reaching a terminal
// state.
func (s *Store) FindIncompleteMatches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id
		FROM matches m
		LEFT JOIN results r ON r.match_id = m.id
		WHERE r.match_id IS NULL
		ORDER BY m.seq ASC, m.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("find incomplete matches: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incomplete matches: %w", err)
	}
	return ids, nil
}

// GetLastSeq returns the highest seq recorded in any table, 0 if empty.
// A resumed clock continues from this value.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT seq FROM matches
			UNION ALL SELECT seq FROM steps
			UNION ALL SELECT seq FROM results
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// GetLastSeqForMatch returns the highest seq recorded for one match.
func (s *Store) GetLastSeqForMatch(ctx context.Context, matchID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT seq FROM matches WHERE id = ?
			UNION ALL SELECT seq FROM steps WHERE match_id = ?
			UNION ALL SELECT seq FROM results WHERE match_id = ?
		)
	`, matchID, matchID, matchID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq for match %s: %w", matchID, err)
	}
	return seq, nil
}
