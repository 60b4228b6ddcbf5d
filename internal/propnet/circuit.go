package propnet

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/propnet/internal/ir"
)

// Circuit is the immutable component graph of one game.
type Circuit struct {
	name       string
	components []Component
	roles      []ir.Role
	roleIndex  map[ir.Role]int

	bases       []ID
	baseIndex   map[ir.Sentence]ID
	transitions map[ID]ID // base -> feeding transition

	inputs     [][]ID // per role
	inputIndex []map[ir.Move]ID
	legals     [][]ID // per role
	goals      [][]ID // per role

	terminal ID
	init     ID
}

// New builds a Circuit from a builder's description, checking every
// structural invariant. All violations are reported, joined.
func New(spec ir.CircuitSpec) (*Circuit, error) {
	if errs := Validate(spec); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, errors.Join(joined...)
	}

	c := &Circuit{
		name:        spec.Name,
		components:  make([]Component, len(spec.Components)),
		roles:       slices.Clone(spec.Roles),
		roleIndex:   make(map[ir.Role]int, len(spec.Roles)),
		baseIndex:   make(map[ir.Sentence]ID),
		transitions: make(map[ID]ID),
		inputs:      make([][]ID, len(spec.Roles)),
		inputIndex:  make([]map[ir.Move]ID, len(spec.Roles)),
		legals:      make([][]ID, len(spec.Roles)),
		goals:       make([][]ID, len(spec.Roles)),
	}
	for i, r := range spec.Roles {
		c.roleIndex[r] = i
		c.inputIndex[i] = make(map[ir.Move]ID)
	}

	for i, cs := range spec.Components {
		kind, tag, _ := kindOf(cs.Kind)
		inputs := make([]ID, len(cs.Inputs))
		for j, in := range cs.Inputs {
			inputs[j] = ID(in)
		}
		c.components[i] = Component{
			ID:       ID(i),
			Name:     cs.Name,
			Kind:     kind,
			Tag:      tag,
			Inputs:   inputs,
			Sentence: cs.Sentence,
			Role:     cs.Role,
			Move:     cs.Move,
			Goal:     int(cs.Goal),
			Value:    cs.Value,
		}
	}

	for i := range c.components {
		comp := &c.components[i]
		for _, in := range comp.Inputs {
			c.components[in].Outputs = append(c.components[in].Outputs, comp.ID)
		}

		switch comp.Tag {
		case TagBase:
			c.bases = append(c.bases, comp.ID)
			c.baseIndex[comp.Sentence] = comp.ID
			c.transitions[comp.ID] = comp.Inputs[0]
		case TagInput:
			r := c.roleIndex[comp.Role]
			c.inputs[r] = append(c.inputs[r], comp.ID)
			c.inputIndex[r][comp.Move] = comp.ID
		case TagLegal:
			r := c.roleIndex[comp.Role]
			c.legals[r] = append(c.legals[r], comp.ID)
		case TagGoal:
			r := c.roleIndex[comp.Role]
			c.goals[r] = append(c.goals[r], comp.ID)
		case TagTerminal:
			c.terminal = comp.ID
		case TagInit:
			c.init = comp.ID
		}
	}

	return c, nil
}

// Validate checks a description against the circuit invariants without
// building it. It reports every violation found.
func Validate(spec ir.CircuitSpec) []*StructureError {
	var errs []*StructureError
	fail := func(id ID, name, format string, args ...any) {
		errs = append(errs, &StructureError{ID: id, Name: name, Message: fmt.Sprintf(format, args...)})
	}

	if len(spec.Roles) == 0 {
		fail(-1, "", "at least one role is required")
	}
	roles := make(map[ir.Role]bool, len(spec.Roles))
	for _, r := range spec.Roles {
		if r == "" {
			fail(-1, "", "role names must be non-empty")
		}
		if roles[r] {
			fail(-1, "", "duplicate role %q", r)
		}
		roles[r] = true
	}

	n := len(spec.Components)
	terminals, inits := 0, 0
	baseSentences := make(map[ir.Sentence]bool)
	inputMoves := make(map[ir.Role]map[ir.Move]bool)

	for i, cs := range spec.Components {
		id := ID(i)
		if cs.ID != i {
			fail(id, cs.Name, "id %d does not match position %d", cs.ID, i)
		}
		kind, tag, ok := kindOf(cs.Kind)
		if !ok {
			fail(id, cs.Name, "unknown kind %q", cs.Kind)
			continue
		}
		for _, in := range cs.Inputs {
			if in < 0 || in >= n {
				fail(id, cs.Name, "input %d out of range [0,%d)", in, n)
				continue
			}
			// A transition carries the next step's value. Reading it
			// anywhere but a base would leak it into the current pass.
			if tag != TagBase && spec.Components[in].Kind == ir.KindTransition {
				fail(id, cs.Name, "%s reads transition %d; only a base proposition may consume a transition", cs.Kind, in)
			}
		}

		arity := len(cs.Inputs)
		switch {
		case kind == KindNot || kind == KindTransition:
			if arity != 1 {
				fail(id, cs.Name, "%s requires exactly 1 input, has %d", cs.Kind, arity)
			}
		case tag == TagBase:
			if arity != 1 {
				fail(id, cs.Name, "base proposition must be fed by exactly 1 transition, has %d inputs", arity)
			} else if in := cs.Inputs[0]; in >= 0 && in < n && spec.Components[in].Kind != ir.KindTransition {
				fail(id, cs.Name, "base proposition input %d is %q, want transition", in, spec.Components[in].Kind)
			}
		case kind == KindSource:
			if arity != 0 {
				fail(id, cs.Name, "%s proposition must have no inputs, has %d", cs.Kind, arity)
			}
		case tag == TagInit:
			if arity > 1 {
				fail(id, cs.Name, "init proposition accepts at most 1 input, has %d", arity)
			}
		case kind == KindDerived:
			if arity != 1 {
				fail(id, cs.Name, "%s proposition requires exactly 1 input, has %d", cs.Kind, arity)
			}
		}

		switch tag {
		case TagTerminal:
			terminals++
		case TagInit:
			inits++
		case TagBase:
			if cs.Sentence == "" {
				fail(id, cs.Name, "base proposition requires a sentence")
			} else if baseSentences[cs.Sentence] {
				fail(id, cs.Name, "duplicate base sentence %q", cs.Sentence)
			}
			baseSentences[cs.Sentence] = true
		case TagLegal, TagInput:
			if !roles[cs.Role] {
				fail(id, cs.Name, "%s proposition names unknown role %q", cs.Kind, cs.Role)
			}
			if cs.Move == "" {
				fail(id, cs.Name, "%s proposition requires a move", cs.Kind)
			}
			if tag == TagInput {
				if inputMoves[cs.Role] == nil {
					inputMoves[cs.Role] = make(map[ir.Move]bool)
				}
				if inputMoves[cs.Role][cs.Move] {
					fail(id, cs.Name, "duplicate input for role %q move %q", cs.Role, cs.Move)
				}
				inputMoves[cs.Role][cs.Move] = true
			}
		case TagGoal:
			if !roles[cs.Role] {
				fail(id, cs.Name, "goal proposition names unknown role %q", cs.Role)
			}
		}
	}

	if terminals != 1 {
		fail(-1, "", "exactly one terminal proposition is required, found %d", terminals)
	}
	if inits != 1 {
		fail(-1, "", "exactly one init proposition is required, found %d", inits)
	}
	return errs
}

// Name returns the circuit's descriptive name, if the builder supplied one.
func (c *Circuit) Name() string { return c.name }

// Len returns the number of components.
func (c *Circuit) Len() int { return len(c.components) }

// Component returns the component with the given ID. The returned pointer
// refers into the arena and must be treated as read-only.
func (c *Circuit) Component(id ID) *Component { return &c.components[id] }

// Roles returns a copy of the ordered role list.
func (c *Circuit) Roles() []ir.Role { return slices.Clone(c.roles) }

// RoleIndex returns the position of a role in the role list.
func (c *Circuit) RoleIndex(r ir.Role) (int, bool) {
	i, ok := c.roleIndex[r]
	return i, ok
}

// Bases returns every Base proposition in ID order. Read-only.
func (c *Circuit) Bases() []ID { return c.bases }

// BaseFor returns the Base proposition carrying the sentence.
func (c *Circuit) BaseFor(s ir.Sentence) (ID, bool) {
	id, ok := c.baseIndex[s]
	return id, ok
}

// TransitionOf returns the Transition feeding a Base proposition.
func (c *Circuit) TransitionOf(base ID) ID { return c.transitions[base] }

// Inputs returns the Input propositions of the role at index r. Read-only.
func (c *Circuit) Inputs(r int) []ID { return c.inputs[r] }

// InputFor returns the Input proposition of role index r for a move.
func (c *Circuit) InputFor(r int, m ir.Move) (ID, bool) {
	id, ok := c.inputIndex[r][m]
	return id, ok
}

// Legals returns the Legal propositions of the role at index r. Read-only.
func (c *Circuit) Legals(r int) []ID { return c.legals[r] }

// Goals returns the Goal propositions of the role at index r. Read-only.
func (c *Circuit) Goals(r int) []ID { return c.goals[r] }

// Terminal returns the Terminal proposition.
func (c *Circuit) Terminal() ID { return c.terminal }

// Init returns the Init proposition.
func (c *Circuit) Init() ID { return c.init }
