// Package store provides SQLite-backed storage for recorded matches.
//
// The log is append-only:
//   - matches: one header per match (circuit hash, roles, versions)
//   - steps: the state and joint move of every step, UNIQUE(match_id, step)
//   - results: terminal state and goal values, one per finished match
//
// Ordering uses the seq column stamped by the engine's logical clock, never
// wall time. Every multi-row query orders by seq, then by a binary-collated
// key, so reads are identical across runs.
//
// States, roles, moves and goals are stored as canonical JSON; state IDs are
// the content hashes from internal/ir.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
