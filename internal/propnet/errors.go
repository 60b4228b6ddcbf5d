package propnet

import (
	"errors"
	"fmt"
	"strings"
)

// StructureError reports a circuit that violates a structural invariant
// (arity, dangling reference, missing or duplicate singleton proposition).
type StructureError struct {
	// ID is the offending component, or -1 for circuit-wide problems.
	ID      ID
	Name    string
	Message string
}

func (e *StructureError) Error() string {
	if e.ID < 0 {
		return "malformed circuit: " + e.Message
	}
	if e.Name != "" {
		return fmt.Sprintf("malformed circuit: component %d (%s): %s", e.ID, e.Name, e.Message)
	}
	return fmt.Sprintf("malformed circuit: component %d: %s", e.ID, e.Message)
}

// CycleError is returned when the non-source subgraph is not acyclic. The
// circuit cannot be evaluated in a single pass and is rejected at
// construction.
type CycleError struct {
	// Path is one concrete cycle; the first and last entries are equal.
	Path []ID
	// Labels holds the component labels along Path.
	Labels []string
}

func (e *CycleError) Error() string {
	return "cycle detected in propositional network: " + strings.Join(e.Labels, " → ")
}

// IsCycleError reports whether err is, or wraps, a CycleError.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

// IsStructureError reports whether err is, or wraps, a StructureError.
func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}
