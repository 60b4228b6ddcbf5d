// Package analysis reports static diagnostics on a circuit.
//
// Two analyses are offered. FeedbackLoops lists the strongly connected
// components of the full graph, which in a valid circuit close only through
// base propositions and show how state carries across steps. Analyze encodes
// one propagation pass as an and-inverter graph over free base variables and
// asks a SAT solver about rule hygiene: a terminal that can never hold,
// overlapping goals, terminal states without a goal, and non-terminal states
// without a legal move.
//
// Base variables range over every assignment, reachable or not, so SAT
// findings are over-approximations and are reported as warnings, never
// errors.
package analysis
