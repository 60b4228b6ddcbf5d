package analysis

import "github.com/roach88/propnet/internal/ir"

// Warning levels.
const (
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// Warning codes.
const (
	CodeTerminalUnsatisfiable = "W201" // terminal can never hold
	CodeGoalOverlap           = "W202" // two goals of one role can hold together
	CodeTerminalWithoutGoal   = "W203" // some terminal assignment has no true goal
	CodeNoLegalMove           = "W204" // some non-terminal assignment has no legal move
	CodeDeadLegal             = "W205" // a legal proposition can never hold
	CodeFeedbackLoop          = "I210" // state feedback through base propositions
)

// Warning is one diagnostic. Witness, when present, is a base assignment
// that exhibits the problem; it may be unreachable from the initial state.
type Warning struct {
	Code    string        `json:"code"`
	Level   string        `json:"level"`
	Message string        `json:"message"`
	Role    ir.Role       `json:"role,omitempty"`
	Path    []string      `json:"path,omitempty"`
	Witness []ir.Sentence `json:"witness,omitempty"`
}
