package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/propnet/internal/engine"
	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/machine"
	"github.com/roach88/propnet/internal/store"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Database string
	Matches  int
	Seed     uint64
	MaxSteps int
	First    []string // roles that play their first legal move
}

// PlayedMatch is the outcome of one match.
type PlayedMatch struct {
	ID         string   `json:"id"`
	Steps      int      `json:"steps"`
	FinalState ir.State `json:"final_state,omitempty"`
	Goals      []int    `json:"goals,omitempty"`
	Repeats    int      `json:"repeats"`
	Error      string   `json:"error,omitempty"`
}

// PlayResult is the JSON payload of the play command.
type PlayResult struct {
	Circuit     string        `json:"circuit"`
	CircuitHash string        `json:"circuit_hash"`
	Roles       []ir.Role     `json:"roles"`
	Matches     []PlayedMatch `json:"matches"`
	Failed      int           `json:"failed"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <circuit>",
		Short: "Play matches and optionally record them",
		Long: `Play matches from the initial state to a terminal state. Every role
picks uniformly among its legal moves unless listed in --first.

With --db each match is recorded (header, every step, and the result)
so it can be verified later with 'propnet replay'. Recording resumes
the logical clock after the last row already in the database.

Exit codes:
  0 - All matches reached a terminal state
  1 - A match failed (step quota, no legal moves, ill-defined goal)
  2 - Command error (circuit not loadable, database error, etc.)

Examples:
  propnet play ./light.cue
  propnet play ./light.cue --db ./matches.db --matches 10 --seed 3
  propnet play ./mark.cue --first x --max-steps 50`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to record into")
	cmd.Flags().IntVarP(&opts.Matches, "matches", "n", 1, "number of matches")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", engine.DefaultMaxSteps, "steps before a match is abandoned")
	cmd.Flags().StringSliceVar(&opts.First, "first", nil, "roles that always play their first legal move")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Matches <= 0 {
		_ = formatter.Error(ErrCodeInvalidArg, fmt.Sprintf("--matches must be positive, got %d", opts.Matches), nil)
		return NewExitError(ExitCommandError, "invalid --matches")
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	loaded, lerr := LoadCircuit(path, logger)
	if lerr != nil {
		return outputLoadError(formatter, lerr)
	}

	runnerOpts := []engine.RunnerOption{
		engine.WithMaxSteps(opts.MaxSteps),
		engine.WithRunnerLogger(logger),
	}
	for _, role := range opts.First {
		runnerOpts = append(runnerOpts, engine.WithPolicy(ir.Role(role), engine.FirstLegalPolicy{}))
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		clock, err := engine.ResumeClock(ctx, st)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read database", err)
		}
		formatter.VerboseLog("Recording into %s after seq %d", opts.Database, clock.Current())
		runnerOpts = append(runnerOpts,
			engine.WithStore(st, loaded.Hash),
			engine.WithClock(clock))
	}

	runner, err := engine.NewRunner(loaded.Machine, engine.NewRandomPolicy(opts.Seed), runnerOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidArg, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --first", err)
	}

	result := PlayResult{
		Circuit:     loaded.Spec.Name,
		CircuitHash: loaded.Hash,
		Roles:       loaded.Machine.Roles(),
		Matches:     make([]PlayedMatch, 0, opts.Matches),
	}
	for i := 0; i < opts.Matches; i++ {
		res, err := runner.Play(ctx)
		if err != nil {
			if ctx.Err() != nil || isStoreError(err) {
				_ = formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitCommandError, "play aborted", err)
			}
			result.Failed++
			result.Matches = append(result.Matches, PlayedMatch{Error: err.Error()})
			continue
		}
		result.Matches = append(result.Matches, PlayedMatch{
			ID:         res.ID,
			Steps:      len(res.Steps),
			FinalState: res.FinalState,
			Goals:      res.Goals,
			Repeats:    res.Repeats,
		})
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputPlayText(formatter, result)
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d match(es) failed", result.Failed, len(result.Matches)))
	}
	return nil
}

// isStoreError reports whether a play error came from the database rather
// than from the game.
func isStoreError(err error) bool {
	var rt *engine.RuntimeError
	var me *machine.MachineError
	return !errors.As(err, &rt) && !errors.As(err, &me)
}

func outputPlayText(formatter *OutputFormatter, result PlayResult) {
	w := formatter.Writer
	fmt.Fprintf(w, "Played %d match(es) of %s, roles %v\n\n", len(result.Matches), result.Circuit, result.Roles)
	for _, m := range result.Matches {
		if m.Error != "" {
			fmt.Fprintf(w, "✗ %s\n", m.Error)
			continue
		}
		fmt.Fprintf(w, "✓ %s: %d step(s), goals %v", m.ID, m.Steps, m.Goals)
		if m.Repeats > 0 {
			fmt.Fprintf(w, ", %d repeated state(s)", m.Repeats)
		}
		fmt.Fprintln(w)
	}
}
