package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/store"
)

func TestPlayWithoutDatabase(t *testing.T) {
	out, err := execute(t, NewPlayCommand(&RootOptions{Format: "json"}), markCircuit)
	require.NoError(t, err)

	var result PlayResult
	require.Equal(t, "ok", decodeData(t, out, &result))
	assert.Equal(t, "mark", result.Circuit)
	assert.Equal(t, []ir.Role{"white", "black"}, result.Roles)
	require.Len(t, result.Matches, 1)
	m := result.Matches[0]
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, 2, m.Steps)
	assert.Equal(t, []int{50, 50}, m.Goals)
	assert.Zero(t, result.Failed)
}

func TestPlayFirstLegalPolicy(t *testing.T) {
	out, err := execute(t, NewPlayCommand(&RootOptions{Format: "json"}), lightCircuit, "--first", "robot", "--matches", "3")
	require.NoError(t, err)

	var result PlayResult
	decodeData(t, out, &result)
	require.Len(t, result.Matches, 3)
	for _, m := range result.Matches {
		// toggle is listed first, so every match ends after one step.
		assert.Equal(t, 1, m.Steps)
		assert.Equal(t, []int{100}, m.Goals)
		assert.Equal(t, []ir.Sentence{"(true on)"}, m.FinalState.Sentences())
	}
}

func TestPlayUnknownRole(t *testing.T) {
	out, err := execute(t, NewPlayCommand(&RootOptions{Format: "text"}), lightCircuit, "--first", "nobody")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "UNKNOWN_ROLE")
}

func TestPlayRecordsMatches(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "matches.db")

	_, err := execute(t, NewPlayCommand(&RootOptions{Format: "json"}), lightCircuit,
		"--db", dbPath, "--matches", "3", "--seed", "5")
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	matches, err := st.ListMatches(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for _, m := range matches {
		assert.Equal(t, "light", m.CircuitName)
		assert.Equal(t, []ir.Role{"robot"}, m.Roles)

		res, ok, err := st.ReadResult(ctx, m.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []int{100}, res.Goals)
	}

	incomplete, err := st.FindIncompleteMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, incomplete)
}

func TestPlayResumesClock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "matches.db")

	for i := 0; i < 2; i++ {
		_, err := execute(t, NewPlayCommand(&RootOptions{Format: "json"}), lightCircuit,
			"--db", dbPath, "--first", "robot")
		require.NoError(t, err)
	}

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	matches, err := st.ListMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 2)
	// header, one step, result: the second run starts after seq 3.
	assert.Equal(t, int64(1), matches[0].Seq)
	assert.Equal(t, int64(4), matches[1].Seq)

	last, err := st.GetLastSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), last)
}

func TestPlayText(t *testing.T) {
	out, err := execute(t, NewPlayCommand(&RootOptions{Format: "text"}), markCircuit, "--matches", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Played 2 match(es) of mark")
	assert.Contains(t, out, "2 step(s), goals [50 50]")
}

func TestPlayInvalidMatches(t *testing.T) {
	out, err := execute(t, NewPlayCommand(&RootOptions{Format: "text"}), lightCircuit, "--matches", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeInvalidArg)
}
