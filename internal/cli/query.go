package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/propnet"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	State   string // comma-separated sentences; empty means the initial state
	Initial bool
	Moves   string // comma-separated joint move, role order
	Dot     string // write the evaluated circuit as Graphviz
}

// RoleQuery is the per-role part of a query result.
type RoleQuery struct {
	Role  ir.Role   `json:"role"`
	Legal []ir.Move `json:"legal"`
	Goal  *int      `json:"goal,omitempty"`
}

// QueryResult describes one state of the machine.
type QueryResult struct {
	State    ir.State    `json:"state"`
	StateID  string      `json:"state_id"`
	Terminal bool        `json:"terminal"`
	Roles    []RoleQuery `json:"roles"`
	Next     *ir.State   `json:"next,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <circuit>",
		Short: "Query the machine at a state",
		Long: `Report whether a state is terminal, the legal moves of every role,
and the goal values when the state is terminal. With --moves the
successor state under that joint move is reported too.

Examples:
  propnet query ./light.cue --initial
  propnet query ./light.cue --state "(true on)"
  propnet query ./light.cue --initial --moves toggle
  propnet query ./light.cue --initial --dot light.dot`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "state as comma-separated sentences")
	cmd.Flags().BoolVar(&opts.Initial, "initial", false, "query the initial state")
	cmd.Flags().StringVar(&opts.Moves, "moves", "", "joint move as comma-separated moves in role order")
	cmd.Flags().StringVar(&opts.Dot, "dot", "", "write the evaluated circuit as Graphviz DOT to this file")
	cmd.MarkFlagsMutuallyExclusive("state", "initial")

	return cmd
}

func runQuery(opts *QueryOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, lerr := LoadCircuit(path, newLogger(cmd.ErrOrStderr(), opts.Verbose))
	if lerr != nil {
		return outputLoadError(formatter, lerr)
	}
	m := loaded.Machine

	state := m.InitialState()
	if !opts.Initial && opts.State != "" {
		state = ir.ParseState(opts.State)
	}
	formatter.VerboseLog("Querying %s at %v", loaded.Spec.Name, state)

	result := QueryResult{
		State:    state,
		StateID:  ir.StateID(state),
		Terminal: m.IsTerminal(state),
	}
	for _, role := range m.Roles() {
		rq := RoleQuery{Role: role, Legal: []ir.Move{}}
		if legal, err := m.LegalMoves(state, role); err == nil {
			rq.Legal = legal
		}
		if result.Terminal {
			g, err := m.Goal(state, role)
			if err != nil {
				return outputMachineError(formatter, err)
			}
			rq.Goal = &g
		}
		result.Roles = append(result.Roles, rq)
	}

	var moves []ir.Move
	if opts.Moves != "" {
		for _, part := range strings.Split(opts.Moves, ",") {
			moves = append(moves, ir.Move(strings.TrimSpace(part)))
		}
		next, err := m.NextState(state, moves)
		if err != nil {
			return outputMachineError(formatter, err)
		}
		result.Next = &next
	}

	if opts.Dot != "" {
		if err := writeDot(loaded, state, moves, opts.Dot); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing dot file", err)
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return outputQueryText(formatter, result)
}

func writeDot(loaded *LoadedCircuit, state ir.State, moves []ir.Move, filename string) error {
	vals, err := loaded.Machine.Evaluate(state, moves)
	if err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := propnet.WriteDot(f, loaded.Machine.Circuit(), vals); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func outputQueryText(formatter *OutputFormatter, result QueryResult) error {
	w := formatter.Writer
	fmt.Fprintf(w, "State:    %v\n", result.State)
	fmt.Fprintf(w, "Terminal: %t\n", result.Terminal)
	fmt.Fprintln(w)
	for _, rq := range result.Roles {
		fmt.Fprintf(w, "  %s\n", rq.Role)
		fmt.Fprintf(w, "    legal: %v\n", rq.Legal)
		if rq.Goal != nil {
			fmt.Fprintf(w, "    goal:  %d\n", *rq.Goal)
		}
	}
	if result.Next != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Next:     %v\n", *result.Next)
	}
	return nil
}

// outputMachineError reports a machine error for a command whose input was
// well formed but could not be executed (exit code 1).
func outputMachineError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(ErrCodeMachine, err.Error(), nil)
	return WrapExitError(ExitFailure, "machine error", err)
}
