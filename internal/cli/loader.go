package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cuelang.org/go/cue/token"

	"github.com/roach88/propnet/internal/compiler"
	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/machine"
)

// LoadError represents an error that occurred while loading a circuit.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	// Validation holds every validation error when Code is ErrCodeBuildFailed.
	Validation []compiler.ValidationError
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadedCircuit is a validated circuit ready to run.
type LoadedCircuit struct {
	Spec    *ir.CircuitSpec
	Hash    string
	Machine *machine.Machine
}

// LoadSpec reads a circuit description without validating it.
func LoadSpec(path string) (*ir.CircuitSpec, *LoadError) {
	spec, err := compiler.LoadCircuit(path)
	if err != nil {
		return nil, convertLoadError(err)
	}
	return spec, nil
}

// LoadCircuit reads, validates and builds the circuit at path.
func LoadCircuit(path string, logger *slog.Logger) (*LoadedCircuit, *LoadError) {
	spec, lerr := LoadSpec(path)
	if lerr != nil {
		return nil, lerr
	}
	if verrs := compiler.Validate(*spec); len(verrs) > 0 {
		return nil, &LoadError{
			Code:       ErrCodeBuildFailed,
			Message:    fmt.Sprintf("circuit %q has %d validation error(s), first: %s", spec.Name, len(verrs), verrs[0].Error()),
			Validation: verrs,
		}
	}

	hash, err := ir.CircuitHash(*spec)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("hashing circuit: %v", err)}
	}
	m, err := machine.FromSpec(*spec, machine.WithLogger(logger))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
	}
	return &LoadedCircuit{Spec: spec, Hash: hash, Machine: m}, nil
}

func convertLoadError(err error) *LoadError {
	if errors.Is(err, compiler.ErrNoCircuit) {
		return &LoadError{Code: ErrCodeNoCircuit, Message: err.Error()}
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// newLogger returns the text logger commands hand to the machine and engine.
// Logs go to w (stderr) so they never mix with command output.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// outputLoadError reports a load failure. Loading problems are command
// errors (exit code 2).
func outputLoadError(formatter *OutputFormatter, lerr *LoadError) error {
	var details interface{}
	if len(lerr.Validation) > 0 {
		details = lerr.Validation
	}
	_ = formatter.Error(lerr.Code, lerr.Message, details)
	return WrapExitError(ExitCommandError, lerr.Code, lerr)
}
