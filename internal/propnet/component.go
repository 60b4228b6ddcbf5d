package propnet

import (
	"fmt"

	"github.com/roach88/propnet/internal/ir"
)

// ID addresses a component inside its Circuit.
type ID int

// Kind is the closed set of component behaviours.
type Kind uint8

const (
	KindAnd Kind = iota
	KindOr
	KindNot
	KindTransition
	KindSource
	KindDerived
)

func (k Kind) String() string {
	switch k {
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	case KindTransition:
		return "transition"
	case KindSource:
		return "source"
	case KindDerived:
		return "derived"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Tag refines Source and Derived propositions by their role in the game.
// Gates and transitions carry TagNone.
type Tag uint8

const (
	TagNone Tag = iota
	TagBase
	TagInput
	TagConstant
	TagLegal
	TagTerminal
	TagGoal
	TagInit
	TagView
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagBase:
		return "base"
	case TagInput:
		return "input"
	case TagConstant:
		return "constant"
	case TagLegal:
		return "legal"
	case TagTerminal:
		return "terminal"
	case TagGoal:
		return "goal"
	case TagInit:
		return "init"
	case TagView:
		return "view"
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Component is one node of the circuit.
//
// Inputs is ordered; Outputs lists every component that names this one as an
// input (once per occurrence). Both slices belong to the Circuit and must not
// be modified.
type Component struct {
	ID      ID
	Name    string
	Kind    Kind
	Tag     Tag
	Inputs  []ID
	Outputs []ID

	Sentence ir.Sentence // base, input, view and plain propositions
	Role     ir.Role     // legal, input, goal
	Move     ir.Move     // legal, input
	Goal     int         // goal
	Value    bool        // constant
}

// IsSource reports whether the component's value is supplied by the
// assignment rather than computed. An Init proposition without inputs is
// externally supplied too.
func (c *Component) IsSource() bool {
	return c.Kind == KindSource || (c.Tag == TagInit && len(c.Inputs) == 0)
}

// Label returns the most descriptive identifier available, for diagnostics.
func (c *Component) Label() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Sentence != "":
		return string(c.Sentence)
	case c.Move != "":
		return fmt.Sprintf("%s(%s %s)", c.Tag, c.Role, c.Move)
	}
	if c.Tag != TagNone {
		return fmt.Sprintf("%s#%d", c.Tag, c.ID)
	}
	return fmt.Sprintf("%s#%d", c.Kind, c.ID)
}

// kindOf maps a CircuitSpec kind string to Kind and Tag.
func kindOf(kind string) (Kind, Tag, bool) {
	switch kind {
	case ir.KindAnd:
		return KindAnd, TagNone, true
	case ir.KindOr:
		return KindOr, TagNone, true
	case ir.KindNot:
		return KindNot, TagNone, true
	case ir.KindTransition:
		return KindTransition, TagNone, true
	case ir.KindBase:
		return KindSource, TagBase, true
	case ir.KindInput:
		return KindSource, TagInput, true
	case ir.KindConstant:
		return KindSource, TagConstant, true
	case ir.KindLegal:
		return KindDerived, TagLegal, true
	case ir.KindTerminal:
		return KindDerived, TagTerminal, true
	case ir.KindGoal:
		return KindDerived, TagGoal, true
	case ir.KindInit:
		return KindDerived, TagInit, true
	case ir.KindView:
		return KindDerived, TagView, true
	case ir.KindProposition:
		return KindDerived, TagNone, true
	}
	return 0, 0, false
}
