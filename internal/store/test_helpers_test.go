package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/propnet/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestMatch creates a match header with minimal required fields.
func createTestMatch(id string, seq int64) ir.MatchRecord {
	return ir.MatchRecord{
		ID:            id,
		CircuitHash:   "test-hash",
		CircuitName:   "light",
		Roles:         []ir.Role{"robot"},
		Seq:           seq,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

// createTestStep creates a step whose state ID matches its state.
func createTestStep(matchID string, step int, state ir.State, move ir.Move, seq int64) ir.StepRecord {
	return ir.StepRecord{
		MatchID: matchID,
		Step:    step,
		StateID: ir.StateID(state),
		State:   state,
		Moves:   []ir.Move{move},
		Seq:     seq,
	}
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
