// Package propnet implements the propositional network: the compiled boolean
// circuit of a game's rules and the single-pass evaluation over it.
//
// A Circuit is an arena of Components addressed by ID. Edges are ID lists in
// both directions; the arena owns every node. The Circuit is immutable after
// New returns.
//
// Evaluation happens in two phases:
//
//  1. ComputeOrdering linearizes every non-source component once, so that each
//     component follows all of its non-source inputs. Sources (Base, Input and
//     Constant propositions, and an input-less Init) are never computed. A Base
//     proposition's edge from its Transition only closes across time steps and
//     is not part of the ordering.
//  2. Evaluator.Propagate walks that ordering once per query over a caller-owned
//     Values buffer. Each component is visited exactly once, so shared
//     sub-expressions are never re-evaluated.
//
// Values buffers are allocated per query and never stored on the Circuit, so
// any number of goroutines may evaluate the same Circuit concurrently.
package propnet
