package ir

// Component kinds as they appear in a CircuitSpec.
const (
	KindAnd         = "and"
	KindOr          = "or"
	KindNot         = "not"
	KindTransition  = "transition"
	KindBase        = "base"
	KindInput       = "input"
	KindConstant    = "constant"
	KindLegal       = "legal"
	KindTerminal    = "terminal"
	KindGoal        = "goal"
	KindInit        = "init"
	KindView        = "view"
	KindProposition = "proposition"
)

// ValidKinds lists every component kind accepted in a CircuitSpec.
var ValidKinds = map[string]bool{
	KindAnd:         true,
	KindOr:          true,
	KindNot:         true,
	KindTransition:  true,
	KindBase:        true,
	KindInput:       true,
	KindConstant:    true,
	KindLegal:       true,
	KindTerminal:    true,
	KindGoal:        true,
	KindInit:        true,
	KindView:        true,
	KindProposition: true,
}

// CircuitSpec is the finished output of a network builder: the component
// graph of a game plus its ordered role list.
//
// Component IDs must equal their index in Components. Inputs reference IDs.
type CircuitSpec struct {
	Name       string          `json:"name,omitempty"`
	Roles      []Role          `json:"roles"`
	Components []ComponentSpec `json:"components"`
}

// ComponentSpec describes one node of the circuit.
type ComponentSpec struct {
	ID       int      `json:"id"`
	Name     string   `json:"name,omitempty"`
	Kind     string   `json:"kind"`
	Inputs   []int    `json:"inputs,omitempty"`
	Sentence Sentence `json:"sentence,omitempty"` // base, input, view, proposition
	Role     Role     `json:"role,omitempty"`     // legal, input, goal
	Move     Move     `json:"move,omitempty"`     // legal, input
	Goal     int64    `json:"goal,omitempty"`     // goal
	Value    bool     `json:"value,omitempty"`    // constant
}
