package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/propnet/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the JSON payload of a successful compile.
type CompilationResult struct {
	Circuit *ir.CircuitSpec `json:"circuit"`
	Hash    string          `json:"hash"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	Roles      int
	Components int
	ByKind     map[string]int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <circuit>",
		Short: "Compile a CUE circuit to JSON",
		Long: `Compile a CUE circuit description to its JSON form.

The path may be a directory of CUE files, a single .cue file, or an
already compiled .json file. The circuit is validated before output;
the JSON it writes can be passed to every other command.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, lerr := LoadCircuit(path, newLogger(cmd.ErrOrStderr(), opts.Verbose))
	if lerr != nil {
		return outputLoadError(formatter, lerr)
	}
	formatter.VerboseLog("Loaded circuit %q from %s", loaded.Spec.Name, path)

	stats := calculateStats(loaded.Spec)

	if opts.Output != "" {
		if err := writeCircuitToFile(loaded.Spec, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	return outputCompileSuccess(formatter, loaded, stats, opts.Output)
}

// calculateStats counts components per kind.
func calculateStats(spec *ir.CircuitSpec) CompilationStats {
	stats := CompilationStats{
		Roles:      len(spec.Roles),
		Components: len(spec.Components),
		ByKind:     make(map[string]int),
	}
	for _, c := range spec.Components {
		stats.ByKind[c.Kind]++
	}
	return stats
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, loaded *LoadedCircuit, stats CompilationStats, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(CompilationResult{Circuit: loaded.Spec, Hash: loaded.Hash})
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %s: %d role(s), %d component(s)\n\n",
		loaded.Spec.Name, stats.Roles, stats.Components)

	fmt.Fprintln(formatter.Writer, "Components:")
	for _, kind := range sortedKeys(stats.ByKind) {
		fmt.Fprintf(formatter.Writer, "  %-10s %d\n", kind, stats.ByKind[kind])
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "Hash: %s\n", loaded.Hash)

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote circuit to %s\n", outputFile)
	}

	return nil
}

// writeCircuitToFile writes the circuit as indented JSON.
// (canonical JSON without indentation is used only for hashing)
func writeCircuitToFile(spec *ir.CircuitSpec, filename string) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling circuit: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
