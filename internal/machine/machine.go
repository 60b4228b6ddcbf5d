package machine

import (
	"log/slog"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/propnet"
)

// StateMachine is the game contract consumed by players and simulators.
type StateMachine interface {
	Roles() []ir.Role
	InitialState() ir.State
	IsTerminal(state ir.State) bool
	LegalMoves(state ir.State, role ir.Role) ([]ir.Move, error)
	Goal(state ir.State, role ir.Role) (int, error)
	NextState(state ir.State, moves []ir.Move) (ir.State, error)
}

// Machine answers state machine queries by propagating a circuit.
type Machine struct {
	c      *propnet.Circuit
	eval   *propnet.Evaluator
	logger *slog.Logger
}

var _ StateMachine = (*Machine)(nil)

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger used for construction and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// New computes the circuit's evaluation order and returns a ready machine.
// It fails with a propnet.CycleError when the circuit cannot be evaluated in
// a single pass.
func New(c *propnet.Circuit, opts ...Option) (*Machine, error) {
	m := &Machine{c: c, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}

	eval, err := propnet.NewEvaluator(c)
	if err != nil {
		m.logger.Error("circuit rejected", "circuit", c.Name(), "error", err)
		return nil, err
	}
	m.eval = eval

	m.logger.Debug("machine ready",
		"circuit", c.Name(),
		"components", c.Len(),
		"ordered", len(eval.Ordering()),
		"bases", len(c.Bases()),
		"roles", len(c.Roles()))
	return m, nil
}

// FromSpec validates a builder's description and returns a machine for it.
func FromSpec(spec ir.CircuitSpec, opts ...Option) (*Machine, error) {
	c, err := propnet.New(spec)
	if err != nil {
		return nil, err
	}
	return New(c, opts...)
}

// Circuit returns the underlying circuit.
func (m *Machine) Circuit() *propnet.Circuit { return m.c }

// Roles returns the game's roles in their fixed order.
func (m *Machine) Roles() []ir.Role { return m.c.Roles() }

// InitialState propagates with only the init proposition true and reads the
// state from the base transitions.
func (m *Machine) InitialState() ir.State {
	vals := m.eval.NewValues()
	if init := m.c.Component(m.c.Init()); init.IsSource() {
		vals[init.ID] = true
	}
	m.eval.Propagate(vals)
	return m.successor(vals)
}

// IsTerminal reports whether the terminal proposition holds in state.
func (m *Machine) IsTerminal(state ir.State) bool {
	vals := m.propagate(state)
	return vals[m.c.Terminal()]
}

// LegalMoves returns role's legal moves in state, in circuit order. A
// non-empty result is required; an empty one is a NO_LEGAL_MOVES error.
func (m *Machine) LegalMoves(state ir.State, role ir.Role) ([]ir.Move, error) {
	r, ok := m.c.RoleIndex(role)
	if !ok {
		return nil, NewUnknownRoleError(role)
	}
	moves := m.legal(m.propagate(state), r)
	if len(moves) == 0 {
		return nil, NewNoLegalMovesError(role, state)
	}
	return moves, nil
}

// Goal returns role's goal value in state. Exactly one goal proposition of
// the role must be true.
func (m *Machine) Goal(state ir.State, role ir.Role) (int, error) {
	r, ok := m.c.RoleIndex(role)
	if !ok {
		return 0, NewUnknownRoleError(role)
	}
	return m.goal(m.propagate(state), state, r)
}

// Goals returns every role's goal value in state, in role order.
func (m *Machine) Goals(state ir.State) ([]int, error) {
	vals := m.propagate(state)
	goals := make([]int, len(m.c.Roles()))
	for r := range goals {
		g, err := m.goal(vals, state, r)
		if err != nil {
			return nil, err
		}
		goals[r] = g
	}
	return goals, nil
}

// NextState returns the successor of state under a joint move, one move per
// role in role order.
func (m *Machine) NextState(state ir.State, moves []ir.Move) (ir.State, error) {
	vals := m.assign(state)
	if err := m.assignMoves(vals, moves); err != nil {
		return ir.State{}, err
	}
	m.eval.Propagate(vals)
	return m.successor(vals), nil
}

// Evaluate propagates state and an optional joint move and returns the full
// assignment. A nil moves leaves every input false.
func (m *Machine) Evaluate(state ir.State, moves []ir.Move) (propnet.Values, error) {
	vals := m.assign(state)
	if moves != nil {
		if err := m.assignMoves(vals, moves); err != nil {
			return nil, err
		}
	}
	m.eval.Propagate(vals)
	return vals, nil
}

// FindActions lists every move role could ever make, in circuit order.
func (m *Machine) FindActions(role ir.Role) ([]ir.Move, error) {
	r, ok := m.c.RoleIndex(role)
	if !ok {
		return nil, NewUnknownRoleError(role)
	}
	inputs := m.c.Inputs(r)
	moves := make([]ir.Move, len(inputs))
	for i, id := range inputs {
		moves[i] = m.c.Component(id).Move
	}
	return moves, nil
}

func (m *Machine) propagate(state ir.State) propnet.Values {
	vals := m.assign(state)
	m.eval.Propagate(vals)
	return vals
}

// assign sets the base propositions of state. Sentences with no base
// proposition cannot influence the circuit and are ignored.
func (m *Machine) assign(state ir.State) propnet.Values {
	vals := m.eval.NewValues()
	for _, s := range state.Sentences() {
		if id, ok := m.c.BaseFor(s); ok {
			vals[id] = true
		} else {
			m.logger.Debug("state sentence has no base proposition", "sentence", s)
		}
	}
	return vals
}

func (m *Machine) assignMoves(vals propnet.Values, moves []ir.Move) error {
	roles := m.c.Roles()
	if len(moves) != len(roles) {
		return NewMoveCountMismatchError(len(moves), len(roles))
	}
	for r, move := range moves {
		id, ok := m.c.InputFor(r, move)
		if !ok {
			return NewUnknownMoveError(roles[r], move)
		}
		vals[id] = true
	}
	return nil
}

func (m *Machine) successor(vals propnet.Values) ir.State {
	var next []ir.Sentence
	for _, base := range m.c.Bases() {
		if vals[m.c.TransitionOf(base)] {
			next = append(next, m.c.Component(base).Sentence)
		}
	}
	return ir.NewState(next...)
}

func (m *Machine) legal(vals propnet.Values, r int) []ir.Move {
	var moves []ir.Move
	seen := make(map[ir.Move]bool)
	for _, id := range m.c.Legals(r) {
		mv := m.c.Component(id).Move
		if vals[id] && !seen[mv] {
			seen[mv] = true
			moves = append(moves, mv)
		}
	}
	return moves
}

func (m *Machine) goal(vals propnet.Values, state ir.State, r int) (int, error) {
	var values []int
	for _, id := range m.c.Goals(r) {
		if vals[id] {
			values = append(values, m.c.Component(id).Goal)
		}
	}
	if len(values) != 1 {
		return 0, NewIllDefinedGoalError(m.c.Roles()[r], state, values)
	}
	return values[0], nil
}
