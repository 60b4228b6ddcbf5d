package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/propnet"
)

// Validation error codes (E100-E199)
const (
	ErrStructure        = "E100" // structural invariant (arity, references, singletons)
	ErrCycle            = "E101" // non-source subgraph is cyclic
	ErrGoalRange        = "E102" // goal value outside 0..100
	ErrMissingSentence  = "E103" // input or view without a sentence
	ErrUnplayableLegal  = "E104" // legal move with no matching input
	ErrDuplicateName    = "E105" // duplicate component name
	ErrRoleWithoutGoals = "E106" // role has no goal proposition
	ErrRoleWithoutMoves = "E107" // role has no legal proposition
)

// ValidationError represents a circuit validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled circuit. It returns every error found, does
// not fail fast, and only attempts ordering once the structure is sound.
func Validate(spec ir.CircuitSpec) []ValidationError {
	var errs []ValidationError

	for _, se := range propnet.Validate(spec) {
		errs = append(errs, ValidationError{
			Field:   componentField(spec, int(se.ID)),
			Message: se.Message,
			Code:    ErrStructure,
		})
	}
	errs = append(errs, validateRules(spec)...)

	if len(errs) == 0 {
		if err := checkOrdering(spec); err != nil {
			var ce *propnet.CycleError
			if errors.As(err, &ce) {
				errs = append(errs, ValidationError{
					Field:   "components",
					Message: ce.Error(),
					Code:    ErrCycle,
				})
			}
		}
	}
	return errs
}

func checkOrdering(spec ir.CircuitSpec) error {
	c, err := propnet.New(spec)
	if err != nil {
		return err
	}
	_, err = propnet.ComputeOrdering(c)
	return err
}

// validateRules checks conventions of well-formed games that the circuit
// itself does not require.
func validateRules(spec ir.CircuitSpec) []ValidationError {
	var errs []ValidationError
	names := make(map[string]bool)
	inputs := make(map[ir.Role]map[ir.Move]bool)
	hasGoal := make(map[ir.Role]bool)
	hasLegal := make(map[ir.Role]bool)

	for i, c := range spec.Components {
		if c.Kind == ir.KindInput {
			if inputs[c.Role] == nil {
				inputs[c.Role] = make(map[ir.Move]bool)
			}
			inputs[c.Role][c.Move] = true
		}
		if c.Name == "" {
			continue
		}
		if names[c.Name] {
			errs = append(errs, ValidationError{
				Field:   componentField(spec, i),
				Message: fmt.Sprintf("duplicate component name %q", c.Name),
				Code:    ErrDuplicateName,
			})
		}
		names[c.Name] = true
	}

	for i, c := range spec.Components {
		field := componentField(spec, i)
		switch c.Kind {
		case ir.KindGoal:
			hasGoal[c.Role] = true
			if c.Goal < 0 || c.Goal > 100 {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("goal value %d outside 0..100", c.Goal),
					Code:    ErrGoalRange,
				})
			}
		case ir.KindLegal:
			hasLegal[c.Role] = true
			if !inputs[c.Role][c.Move] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("legal move %q of role %q has no input proposition", c.Move, c.Role),
					Code:    ErrUnplayableLegal,
				})
			}
		case ir.KindInput, ir.KindView:
			if c.Sentence == "" {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: c.Kind + " proposition requires a sentence",
					Code:    ErrMissingSentence,
				})
			}
		}
	}

	for _, r := range spec.Roles {
		if !hasGoal[r] {
			errs = append(errs, ValidationError{
				Field:   "roles",
				Message: fmt.Sprintf("role %q has no goal proposition", r),
				Code:    ErrRoleWithoutGoals,
			})
		}
		if !hasLegal[r] {
			errs = append(errs, ValidationError{
				Field:   "roles",
				Message: fmt.Sprintf("role %q has no legal proposition", r),
				Code:    ErrRoleWithoutMoves,
			})
		}
	}
	return errs
}

func componentField(spec ir.CircuitSpec, id int) string {
	if id < 0 || id >= len(spec.Components) {
		return "circuit"
	}
	if name := spec.Components[id].Name; name != "" {
		return "components." + name
	}
	return fmt.Sprintf("components[%d]", id)
}
