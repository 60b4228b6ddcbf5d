package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/propnet/internal/engine"
	"github.com/roach88/propnet/internal/machine"
	"github.com/roach88/propnet/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] {%s}", event.Step, strings.Join(event.State, " "))
		if len(event.Moves) > 0 {
			fmt.Fprintf(&buf, " -> %v", event.Moves)
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Ctx         context.Context
	Store       *store.Store
	Machine     *machine.Machine
	MatchID     string
	CircuitHash string
	Logger      *slog.Logger
}

// EvaluateAssertions runs every assertion and returns the messages of those
// that failed, in order.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result, a)
		case AssertFinalState:
			err = assertFinalState(result.Trace, a)
		case AssertReplay:
			err = assertReplay(result.Trace, actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertTraceContains checks that the sentence is true in some visited state.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	if firstSeen(trace, a.Sentence) >= 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("sentence %s in some state", a.Sentence),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that sentences first become true in the given
// order. Sentences first true in the same state satisfy either order.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	prev := -1
	for i, s := range a.Sentences {
		pos := firstSeen(trace, s)
		if pos < 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("sentences in order: %v", a.Sentences),
				Actual:   fmt.Sprintf("sentence %s never true", s),
				Trace:    trace,
			}
		}
		if pos < prev {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("sentences in order: %v", a.Sentences),
				Actual:   fmt.Sprintf("%s first true at step %d, before %s at step %d", s, pos, a.Sentences[i-1], prev),
				Trace:    trace,
			}
		}
		prev = pos
	}
	return nil
}

// assertTraceCount checks how many times a role played a move.
func assertTraceCount(result *Result, a Assertion) error {
	trace := result.Trace
	idx := slices.Index(result.Roles, a.Role)
	count := 0
	if idx >= 0 {
		for _, ev := range trace {
			if idx < len(ev.Moves) && ev.Moves[idx] == a.Move {
				count++
			}
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s played %s %d time(s)", a.Role, a.Move, a.Count),
		Actual:   fmt.Sprintf("%d time(s)", count),
		Trace:    trace,
	}
}

// assertFinalState checks the last visited state.
func assertFinalState(trace []TraceEvent, a Assertion) error {
	last := trace[len(trace)-1]
	for _, s := range a.Sentences {
		if !slices.Contains(last.State, s) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("final state holds %s", s),
				Actual:   fmt.Sprintf("{%s}", strings.Join(last.State, " ")),
				Trace:    trace,
			}
		}
	}
	for _, role := range sortedKeys(a.Goals) {
		got, ok := last.Goals[role]
		if !ok || got != a.Goals[role] {
			actual := "undefined"
			if ok {
				actual = fmt.Sprintf("%d", got)
			}
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("goal(%s) = %d", role, a.Goals[role]),
				Actual:   actual,
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertReplay re-executes the recorded match on the machine.
func assertReplay(trace []TraceEvent, actx *AssertionContext) error {
	if actx == nil || actx.Store == nil || actx.Machine == nil {
		return fmt.Errorf("replay assertion requires a recorded match")
	}
	report, err := engine.Replay(actx.Ctx, actx.Machine, actx.Store, actx.MatchID, actx.CircuitHash, actx.Logger)
	if err != nil {
		return &AssertionError{
			Type:     AssertReplay,
			Expected: "recorded match replays identically",
			Actual:   err.Error(),
			Trace:    trace,
		}
	}
	if want := len(trace) - 1; report.Steps != want {
		return &AssertionError{
			Type:     AssertReplay,
			Expected: fmt.Sprintf("%d replayed steps", want),
			Actual:   fmt.Sprintf("%d", report.Steps),
			Trace:    trace,
		}
	}
	return nil
}

// firstSeen returns the step at which sentence is first true, or -1.
func firstSeen(trace []TraceEvent, sentence string) int {
	for _, ev := range trace {
		if slices.Contains(ev.State, sentence) {
			return ev.Step
		}
	}
	return -1
}
