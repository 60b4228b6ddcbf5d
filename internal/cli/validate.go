package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/propnet/internal/analysis"
	"github.com/roach88/propnet/internal/compiler"
	"github.com/roach88/propnet/internal/propnet"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // treat analysis warnings as failures
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []analysis.Warning         `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <circuit>",
		Short: "Validate a circuit and run static analysis",
		Long: `Validate a circuit description and report static analysis warnings.

Checks structure (arity, references, singletons), game conventions
(goal range, roles with goals and legal moves), and that the circuit
can be ordered. A valid circuit is then analyzed with a SAT solver for
terminal, goal and legal move problems. Warnings do not fail validation
unless --strict is set.

Exit codes:
  0 - Circuit is valid
  1 - Validation failed (or warnings with --strict)
  2 - Command error (path not found, CUE error, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on analysis warnings")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	spec, lerr := LoadSpec(path)
	if lerr != nil {
		return outputLoadError(formatter, lerr)
	}
	formatter.VerboseLog("Validating circuit %q (%d components)", spec.Name, len(spec.Components))

	if errs := compiler.Validate(*spec); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	c, err := propnet.New(*spec)
	if err != nil {
		return outputValidationErrors(formatter, []compiler.ValidationError{{
			Field: "components", Message: err.Error(), Code: compiler.ErrStructure,
		}})
	}
	warnings, err := analysis.Analyze(cmd.Context(), c, newLogger(formatter.Diagnostics(), opts.Verbose))
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("analysis: %v", err), nil)
		return WrapExitError(ExitCommandError, "analysis failed", err)
	}

	if opts.Strict && countLevel(warnings, analysis.LevelWarning) > 0 {
		return outputStrictFailure(formatter, warnings)
	}
	return outputValidateSuccess(formatter, warnings)
}

func countLevel(warnings []analysis.Warning, level string) int {
	n := 0
	for _, w := range warnings {
		if w.Level == level {
			n++
		}
	}
	return n
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, warnings []analysis.Warning) error {
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Warnings: warnings})
	}

	fmt.Fprintln(formatter.Writer, "✓ Circuit valid")
	writeWarnings(formatter.Writer, warnings)
	return nil
}

func writeWarnings(w io.Writer, warnings []analysis.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, warn := range warnings {
		fmt.Fprintf(w, "  %s %s: %s\n", warn.Level, warn.Code, warn.Message)
		if len(warn.Path) > 0 {
			fmt.Fprintf(w, "      path: %s\n", strings.Join(warn.Path, " -> "))
		}
		if warn.Witness != nil {
			fmt.Fprintf(w, "      witness: %v\n", warn.Witness)
		}
	}
}

// outputStrictFailure reports a valid circuit whose warnings fail --strict.
func outputStrictFailure(formatter *OutputFormatter, warnings []analysis.Warning) error {
	n := countLevel(warnings, analysis.LevelWarning)
	failed := NewExitError(ExitFailure, fmt.Sprintf("strict validation failed with %d warning(s)", n))
	if formatter.JSON() {
		result := ValidationResult{Valid: true, Warnings: warnings}
		if err := formatter.Failure(warnings[0].Code, fmt.Sprintf("%d analysis warning(s)", n), result); err != nil {
			return err
		}
		return failed
	}

	fmt.Fprintln(formatter.Writer, "✗ Circuit valid, but --strict found warnings")
	writeWarnings(formatter.Writer, warnings)
	return failed
}

// outputValidationErrors reports every validation error. Validation
// failures exit with ExitFailure.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	failed := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	if formatter.JSON() {
		result := ValidationResult{Valid: false, Errors: errs}
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		return failed
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return failed
}

// ValidateCircuit loads and validates the circuit at path.
// This is a helper function for external callers.
func ValidateCircuit(ctx context.Context, path string) ([]compiler.ValidationError, []analysis.Warning, error) {
	spec, lerr := LoadSpec(path)
	if lerr != nil {
		return nil, nil, lerr
	}
	if errs := compiler.Validate(*spec); len(errs) > 0 {
		return errs, nil, nil
	}
	c, err := propnet.New(*spec)
	if err != nil {
		return nil, nil, err
	}
	warnings, err := analysis.Analyze(ctx, c, newLogger(io.Discard, false))
	return nil, warnings, err
}
