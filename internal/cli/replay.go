package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/propnet/internal/engine"
	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	MatchID  string // optional - specific match only
	AnyHash  bool   // skip the circuit hash check
}

// ReplayMatchResult holds the replay result for a single match.
type ReplayMatchResult struct {
	MatchID       string `json:"match_id"`
	Steps         int    `json:"steps"`
	IsComplete    bool   `json:"is_complete"`
	Goals         []int  `json:"goals,omitempty"`
	Deterministic bool   `json:"deterministic"`
	Error         string `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Matches          []ReplayMatchResult `json:"matches"`
	TotalMatches     int                 `json:"total_matches"`
	Incomplete       []string            `json:"incomplete"`
	AllDeterministic bool                `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <circuit>",
		Short: "Replay recorded matches and verify determinism",
		Long: `Replay recorded matches against a circuit and verify determinism.

Every recorded joint move is re-executed from the initial state. Each
recorded state, and the final state and goals of complete matches, must
match what the machine computes. Matches recorded against a different
circuit are rejected unless --any-hash is set; roles must always match.

Exit codes:
  0 - All matches replayed identically
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  propnet replay ./light.cue --db ./matches.db
  propnet replay ./light.cue --db ./matches.db --match 0193...
  propnet replay ./light.cue --db ./matches.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.MatchID, "match", "", "replay specific match only")
	cmd.Flags().BoolVar(&opts.AnyHash, "any-hash", false, "replay matches recorded against another version of the circuit")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	loaded, lerr := LoadCircuit(path, logger)
	if lerr != nil {
		return outputLoadError(formatter, lerr)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var matchIDs []string
	if opts.MatchID != "" {
		matchIDs = []string{opts.MatchID}
	} else {
		matches, err := st.ListMatches(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list matches", err)
		}
		matchIDs = matchIDsOf(matches)
	}

	incomplete, err := st.FindIncompleteMatches(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find incomplete matches", err)
	}

	result := ReplayResult{
		Matches:          make([]ReplayMatchResult, 0, len(matchIDs)),
		TotalMatches:     len(matchIDs),
		Incomplete:       incomplete,
		AllDeterministic: true,
	}
	if result.Incomplete == nil {
		result.Incomplete = []string{}
	}

	hash := loaded.Hash
	if opts.AnyHash {
		hash = ""
	}
	for _, id := range matchIDs {
		formatter.VerboseLog("Replaying match %s", id)
		mr, err := replayMatch(ctx, loaded, st, id, hash, logger)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("match %s not found", id), nil)
				return WrapExitError(ExitCommandError, fmt.Sprintf("match %s not found", id), err)
			}
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay match %s", id), err)
		}

		result.Matches = append(result.Matches, mr)
		if !mr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// replayMatch replays one match. A divergence or mismatch is a result, not
// an error; only store failures are returned.
func replayMatch(ctx context.Context, loaded *LoadedCircuit, st *store.Store, matchID, hash string, logger *slog.Logger) (ReplayMatchResult, error) {
	report, err := engine.Replay(ctx, loaded.Machine, st, matchID, hash, logger)
	if err != nil {
		if !isStoreError(err) {
			return ReplayMatchResult{MatchID: matchID, Error: err.Error()}, nil
		}
		return ReplayMatchResult{}, err
	}
	return ReplayMatchResult{
		MatchID:       matchID,
		Steps:         report.Steps,
		IsComplete:    report.Complete,
		Goals:         report.Goals,
		Deterministic: true,
	}, nil
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) {
	w := formatter.Writer
	if result.TotalMatches == 0 {
		fmt.Fprintln(w, "No matches found in database.")
		return
	}

	fmt.Fprintf(w, "Replayed %d match(es)\n\n", result.TotalMatches)
	for _, m := range result.Matches {
		if !m.Deterministic {
			fmt.Fprintf(w, "✗ %s: %s\n", m.MatchID, m.Error)
			continue
		}
		status := "complete"
		if !m.IsComplete {
			status = "incomplete"
		}
		fmt.Fprintf(w, "✓ %s: %d step(s), %s", m.MatchID, m.Steps, status)
		if m.IsComplete {
			fmt.Fprintf(w, ", goals %v", m.Goals)
		}
		fmt.Fprintln(w)
	}

	if len(result.Incomplete) > 0 {
		fmt.Fprintf(w, "\n%d incomplete match(es): %v\n", len(result.Incomplete), result.Incomplete)
	}
	fmt.Fprintln(w)
	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All matches deterministic")
	} else {
		fmt.Fprintln(w, "✗ Determinism verification failed")
	}
}

// matchIDsOf returns the IDs of recorded matches.
func matchIDsOf(matches []ir.MatchRecord) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}
