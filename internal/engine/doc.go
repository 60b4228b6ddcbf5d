// Package engine plays matches against a state machine.
//
// A Runner drives one match from the initial state to a terminal state,
// asking a Policy per role for a move at every step. Matches can be recorded
// to a store and re-executed later with Replay, which checks every recorded
// state against the machine.
//
// DepthCharge and Simulate do random playouts for estimation. Simulate runs
// its playouts concurrently against one shared machine; each playout has its
// own random source derived from the seed and its index, so results do not
// depend on scheduling.
//
// Logical time:
// Recorded rows carry a seq number from a SeqSource, never a wall clock.
// Resumed recording continues from store.GetLastSeq.
package engine
