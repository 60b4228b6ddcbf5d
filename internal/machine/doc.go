// Package machine exposes a propositional network as a game state machine.
//
// Every query allocates its own truth assignment: base propositions are set
// from the state, input propositions from the joint move (or all false), the
// evaluator propagates once, and the relevant propositions are read back.
// A Machine is therefore safe for unlimited concurrent use.
//
// States are advanced through transitions: the successor of a state is the
// set of base sentences whose feeding transition evaluated true.
package machine
