package machine

import "github.com/roach88/propnet/internal/ir"

// Successor pairs a joint move with the state it leads to.
type Successor struct {
	Moves []ir.Move `json:"moves"`
	State ir.State  `json:"state"`
}

// LegalJointMoves returns every combination of legal moves, one per role in
// role order. The first role's move varies slowest.
func (m *Machine) LegalJointMoves(state ir.State) ([][]ir.Move, error) {
	roles := m.c.Roles()
	vals := m.propagate(state)

	perRole := make([][]ir.Move, len(roles))
	for r, role := range roles {
		moves := m.legal(vals, r)
		if len(moves) == 0 {
			return nil, NewNoLegalMovesError(role, state)
		}
		perRole[r] = moves
	}

	joint := [][]ir.Move{{}}
	for _, moves := range perRole {
		next := make([][]ir.Move, 0, len(joint)*len(moves))
		for _, prefix := range joint {
			for _, mv := range moves {
				jm := make([]ir.Move, len(prefix), len(prefix)+1)
				copy(jm, prefix)
				next = append(next, append(jm, mv))
			}
		}
		joint = next
	}
	return joint, nil
}

// NextStates expands state by every legal joint move.
func (m *Machine) NextStates(state ir.State) ([]Successor, error) {
	joint, err := m.LegalJointMoves(state)
	if err != nil {
		return nil, err
	}
	out := make([]Successor, len(joint))
	for i, moves := range joint {
		next, err := m.NextState(state, moves)
		if err != nil {
			return nil, err
		}
		out[i] = Successor{Moves: moves, State: next}
	}
	return out, nil
}
