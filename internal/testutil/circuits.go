// Package testutil holds deterministic helpers and circuit fixtures shared by
// package tests.
package testutil

import (
	"strconv"

	"github.com/roach88/propnet/internal/ir"
)

func base(b *ir.Builder, label string, s ir.Sentence, transition string) {
	b.Add(label, ir.ComponentSpec{Kind: ir.KindBase, Sentence: s}, transition)
}

func input(b *ir.Builder, label string, r ir.Role, m ir.Move) {
	b.Add(label, ir.ComponentSpec{Kind: ir.KindInput, Role: r, Move: m, Sentence: ir.Sentence("(does " + string(r) + " " + string(m) + ")")})
}

func legal(b *ir.Builder, label string, r ir.Role, m ir.Move, in string) {
	b.Add(label, ir.ComponentSpec{Kind: ir.KindLegal, Role: r, Move: m}, in)
}

func goal(b *ir.Builder, label string, r ir.Role, v int64, in string) {
	b.Add(label, ir.ComponentSpec{Kind: ir.KindGoal, Role: r, Goal: v}, in)
}

// LightCircuit is a one-player game. The robot may toggle a light that is
// off, or wait. The game ends once the light is on.
//
//	initial:            {(true ready)}
//	legal robot:        toggle when off, wait always
//	(true on)' =        (not on and toggle) or (on and wait)
//	(true ready)' =     init
//	terminal =          on
//	goal robot =        100 when on, 0 otherwise
func LightCircuit() ir.CircuitSpec {
	b := ir.NewBuilder("light", "robot")
	b.Add("init", ir.ComponentSpec{Kind: ir.KindInit})
	b.Add("always", ir.ComponentSpec{Kind: ir.KindConstant, Value: true})
	base(b, "on", "(true on)", "next_on")
	base(b, "ready", "(true ready)", "next_ready")
	input(b, "does_toggle", "robot", "toggle")
	input(b, "does_wait", "robot", "wait")
	b.Gate("off", ir.KindNot, "on")
	b.Gate("flip", ir.KindAnd, "off", "does_toggle")
	b.Gate("keep", ir.KindAnd, "on", "does_wait")
	b.Gate("on_next", ir.KindOr, "flip", "keep")
	b.Gate("next_on", ir.KindTransition, "on_next")
	b.Gate("next_ready", ir.KindTransition, "init")
	legal(b, "legal_toggle", "robot", "toggle", "off")
	legal(b, "legal_wait", "robot", "wait", "always")
	b.Add("terminal", ir.ComponentSpec{Kind: ir.KindTerminal}, "on")
	goal(b, "goal_100", "robot", 100, "on")
	goal(b, "goal_0", "robot", 0, "off")
	return b.MustBuild()
}

// MarkCircuit is a two-player alternating game. The player in control may
// mark once; the other must noop. Control passes every turn and the game
// ends when both have marked, scoring 50 each.
//
//	initial:               {(control white)}
//	(control white)' =     init or (control black)
//	(control black)' =     (control white)
//	(marked R)' =          (marked R) or (does R mark)
//	terminal =             (marked white) and (marked black)
func MarkCircuit() ir.CircuitSpec {
	b := ir.NewBuilder("mark", "white", "black")
	b.Add("init", ir.ComponentSpec{Kind: ir.KindInit})
	base(b, "cw", "(control white)", "next_cw")
	base(b, "cb", "(control black)", "next_cb")
	base(b, "mw", "(marked white)", "next_mw")
	base(b, "mb", "(marked black)", "next_mb")
	input(b, "white_mark", "white", "mark")
	input(b, "white_noop", "white", "noop")
	input(b, "black_mark", "black", "mark")
	input(b, "black_noop", "black", "noop")

	b.Gate("cw_next", ir.KindOr, "init", "cb")
	b.Gate("next_cw", ir.KindTransition, "cw_next")
	b.Gate("next_cb", ir.KindTransition, "cw")
	b.Gate("mw_next", ir.KindOr, "mw", "white_mark")
	b.Gate("next_mw", ir.KindTransition, "mw_next")
	b.Gate("mb_next", ir.KindOr, "mb", "black_mark")
	b.Gate("next_mb", ir.KindTransition, "mb_next")

	legal(b, "legal_white_mark", "white", "mark", "cw")
	legal(b, "legal_white_noop", "white", "noop", "cb")
	legal(b, "legal_black_mark", "black", "mark", "cb")
	legal(b, "legal_black_noop", "black", "noop", "cw")

	b.Gate("both", ir.KindAnd, "mw", "mb")
	b.Add("terminal", ir.ComponentSpec{Kind: ir.KindTerminal}, "both")
	b.Gate("unfinished", ir.KindNot, "terminal")
	goal(b, "goal_white_50", "white", 50, "terminal")
	goal(b, "goal_white_0", "white", 0, "unfinished")
	goal(b, "goal_black_50", "black", 50, "terminal")
	goal(b, "goal_black_0", "black", 0, "unfinished")
	b.Add("view_done", ir.ComponentSpec{Kind: ir.KindView, Sentence: "done"}, "both")
	return b.MustBuild()
}

// BrokenCircuit is structurally valid but violates the rules contract:
// "greedy" has two true goals and "stuck" has neither a true goal nor a
// legal move. It never terminates.
func BrokenCircuit() ir.CircuitSpec {
	b := ir.NewBuilder("broken", "greedy", "stuck")
	b.Add("init", ir.ComponentSpec{Kind: ir.KindInit})
	b.Add("yes", ir.ComponentSpec{Kind: ir.KindConstant, Value: true})
	b.Add("no", ir.ComponentSpec{Kind: ir.KindConstant, Value: false})
	base(b, "tick", "(tick)", "next_tick")
	b.Gate("next_tick", ir.KindTransition, "yes")
	input(b, "greedy_go", "greedy", "go")
	input(b, "stuck_go", "stuck", "go")
	legal(b, "legal_greedy_go", "greedy", "go", "yes")
	legal(b, "legal_stuck_go", "stuck", "go", "no")
	b.Add("terminal", ir.ComponentSpec{Kind: ir.KindTerminal}, "no")
	goal(b, "goal_greedy_100", "greedy", 100, "yes")
	goal(b, "goal_greedy_50", "greedy", 50, "yes")
	goal(b, "goal_stuck_0", "stuck", 0, "no")
	return b.MustBuild()
}

// Ladder returns a circuit whose single legal proposition sits on top of
// depth layers of two gates, each layer reading both gates of the layer
// below. Unmemoized recursive evaluation of it takes 2^depth visits.
func Ladder(depth int) ir.CircuitSpec {
	b := ir.NewBuilder("ladder", "r")
	b.Add("init", ir.ComponentSpec{Kind: ir.KindInit})
	base(b, "p", "p", "next_p")
	b.Gate("next_p", ir.KindTransition, "init")
	input(b, "go", "r", "go")
	prevA, prevB := "p", "p"
	for i := 0; i < depth; i++ {
		a, o := layerLabel("and", i), layerLabel("or", i)
		b.Gate(a, ir.KindAnd, prevA, prevB)
		b.Gate(o, ir.KindOr, prevA, prevB)
		prevA, prevB = a, o
	}
	b.Gate("top", ir.KindAnd, prevA, prevB)
	legal(b, "legal_go", "r", "go", "top")
	b.Add("terminal", ir.ComponentSpec{Kind: ir.KindTerminal}, "top")
	goal(b, "goal", "r", 100, "top")
	return b.MustBuild()
}

func layerLabel(kind string, i int) string {
	return kind + "_" + strconv.Itoa(i)
}
