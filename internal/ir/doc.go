// Package ir provides the canonical representation types shared by every
// other propnet package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Two families of types live here:
//   - Game tokens (Role, Move, Sentence) and the State set. The engine treats
//     them as opaque identifiers compared by equality only.
//   - CircuitSpec, the serializable hand-off format produced by a network
//     builder and consumed by propnet.New.
//
// Key design constraints:
//   - NO float types anywhere - goal values are int64
//   - All JSON tags use snake_case
//   - States are sets: membership is the only semantics, serialization is
//     always sorted so that hashes are stable
package ir
