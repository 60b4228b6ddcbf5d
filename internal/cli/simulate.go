package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/propnet/internal/engine"
	"github.com/roach88/propnet/internal/ir"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Count    int
	Workers  int
	Seed     uint64
	MaxSteps int
}

// RoleSummary is the per-role part of a simulation result.
type RoleSummary struct {
	Role     ir.Role `json:"role"`
	MeanGoal float64 `json:"mean_goal"`
}

// SimulateResult is the JSON payload of the simulate command.
type SimulateResult struct {
	Circuit   string        `json:"circuit"`
	Count     int           `json:"count"`
	Terminal  int           `json:"terminal"`
	Roles     []RoleSummary `json:"roles"`
	MinDepth  int           `json:"min_depth"`
	MaxDepth  int           `json:"max_depth"`
	MeanDepth float64       `json:"mean_depth"`
	Seed      uint64        `json:"seed"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <circuit>",
		Short: "Run random playouts from the initial state",
		Long: `Run random playouts (depth charges) from the initial state in parallel
and report mean goal values per role and playout depths.

The report depends only on --count, --seed and --max-steps; the number
of workers changes speed, not results.

Examples:
  propnet simulate ./light.cue
  propnet simulate ./light.cue --count 10000 --seed 7
  propnet simulate ./light.cue --workers 4 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1000, "number of playouts")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel workers (default GOMAXPROCS)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", engine.DefaultMaxSteps, "steps before a playout is cut off")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Count <= 0 {
		_ = formatter.Error(ErrCodeInvalidArg, fmt.Sprintf("--count must be positive, got %d", opts.Count), nil)
		return NewExitError(ExitCommandError, "invalid --count")
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	loaded, lerr := LoadCircuit(path, logger)
	if lerr != nil {
		return outputLoadError(formatter, lerr)
	}

	report, err := engine.Simulate(cmd.Context(), loaded.Machine, engine.SimulateOptions{
		Count:    opts.Count,
		Workers:  opts.Workers,
		Seed:     opts.Seed,
		MaxSteps: opts.MaxSteps,
		Logger:   logger,
	})
	if err != nil {
		return outputMachineError(formatter, err)
	}

	result := SimulateResult{
		Circuit:   loaded.Spec.Name,
		Count:     report.Count,
		Terminal:  report.Terminal,
		MinDepth:  report.MinDepth,
		MaxDepth:  report.MaxDepth,
		MeanDepth: report.MeanDepth,
		Seed:      opts.Seed,
	}
	for i, role := range report.Roles {
		result.Roles = append(result.Roles, RoleSummary{Role: role, MeanGoal: report.MeanGoals[i]})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ %d playout(s) of %s, %d terminal\n\n", result.Count, result.Circuit, result.Terminal)
	for _, rs := range result.Roles {
		fmt.Fprintf(w, "  %-12s mean goal %.2f\n", rs.Role, rs.MeanGoal)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Depth: min %d, max %d, mean %.2f\n", result.MinDepth, result.MaxDepth, result.MeanDepth)
	if result.Terminal < result.Count {
		fmt.Fprintf(w, "%d playout(s) hit --max-steps %d\n", result.Count-result.Terminal, opts.MaxSteps)
	}
	return nil
}
