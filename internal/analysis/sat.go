package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/roach88/propnet/internal/ir"
	"github.com/roach88/propnet/internal/propnet"
)

const satisfiable = 1

// encoding is one propagation pass as an and-inverter graph. Every source
// proposition is a free variable; constants fold to T or F.
type encoding struct {
	c       *propnet.Circuit
	aig     *logic.C
	lits    []z.Lit
	bases   []propnet.ID
	pinned  []z.Lit // inputs and init, false for non-initial queries
	solver  *gini.Gini
	queries int
}

func encode(c *propnet.Circuit) (*encoding, error) {
	order, err := propnet.ComputeOrdering(c)
	if err != nil {
		return nil, err
	}

	e := &encoding{
		c:     c,
		aig:   logic.NewCCap(c.Len()),
		lits:  make([]z.Lit, c.Len()),
		bases: c.Bases(),
	}
	for i := 0; i < c.Len(); i++ {
		comp := c.Component(propnet.ID(i))
		if !comp.IsSource() {
			continue
		}
		switch {
		case comp.Tag == propnet.TagConstant && comp.Value:
			e.lits[i] = e.aig.T
		case comp.Tag == propnet.TagConstant:
			e.lits[i] = e.aig.F
		default:
			e.lits[i] = e.aig.Lit()
			if comp.Tag != propnet.TagBase {
				e.pinned = append(e.pinned, e.lits[i].Not())
			}
		}
	}

	for _, id := range order {
		comp := c.Component(id)
		ins := make([]z.Lit, len(comp.Inputs))
		for j, in := range comp.Inputs {
			ins[j] = e.lits[in]
		}
		switch comp.Kind {
		case propnet.KindAnd:
			if len(ins) == 0 {
				e.lits[id] = e.aig.T
			} else {
				e.lits[id] = e.aig.Ands(ins...)
			}
		case propnet.KindOr:
			if len(ins) == 0 {
				e.lits[id] = e.aig.F
			} else {
				e.lits[id] = e.aig.Ors(ins...)
			}
		case propnet.KindNot:
			e.lits[id] = ins[0].Not()
		default:
			e.lits[id] = ins[0]
		}
	}

	return e, nil
}

// solve freezes the graph into a fresh solver. Literals built afterwards
// are not visible to it.
func (e *encoding) solve() {
	e.solver = gini.New()
	e.aig.ToCnf(e.solver)
}

// sat reports whether every literal can hold at once in a non-initial pass,
// and if so returns the true bases of a model.
func (e *encoding) sat(ms ...z.Lit) (bool, []ir.Sentence) {
	e.queries++
	for _, m := range ms {
		if m == e.aig.F {
			return false, nil
		}
	}
	e.solver.Assume(e.pinned...)
	e.solver.Assume(ms...)
	if e.solver.Solve() != satisfiable {
		return false, nil
	}
	var witness []ir.Sentence
	for _, b := range e.bases {
		if e.solver.Value(e.lits[b]) {
			witness = append(witness, e.c.Component(b).Sentence)
		}
	}
	return true, witness
}

func (e *encoding) any(ids []propnet.ID) z.Lit {
	if len(ids) == 0 {
		return e.aig.F
	}
	ms := make([]z.Lit, len(ids))
	for i, id := range ids {
		ms[i] = e.lits[id]
	}
	return e.aig.Ors(ms...)
}

// Analyze runs the SAT diagnostics and appends the feedback loop report.
// It fails only when the circuit cannot be ordered or ctx is done.
func Analyze(ctx context.Context, c *propnet.Circuit, logger *slog.Logger) ([]Warning, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e, err := encode(c)
	if err != nil {
		return nil, err
	}
	terminal := e.lits[c.Terminal()]
	roles := c.Roles()
	anyGoal := make([]z.Lit, len(roles))
	anyLegal := make([]z.Lit, len(roles))
	for r := range roles {
		anyGoal[r] = e.any(c.Goals(r))
		anyLegal[r] = e.any(c.Legals(r))
	}
	e.solve()

	var warnings []Warning

	if ok, _ := e.sat(terminal); !ok {
		warnings = append(warnings, Warning{
			Code:    CodeTerminalUnsatisfiable,
			Level:   LevelWarning,
			Message: "terminal proposition can never hold",
		})
	}

	for r, role := range roles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		goals := c.Goals(r)
		for i := 0; i < len(goals); i++ {
			for j := i + 1; j < len(goals); j++ {
				gi, gj := c.Component(goals[i]), c.Component(goals[j])
				if gi.Goal == gj.Goal {
					continue
				}
				if ok, w := e.sat(e.lits[gi.ID], e.lits[gj.ID]); ok {
					warnings = append(warnings, Warning{
						Code:    CodeGoalOverlap,
						Level:   LevelWarning,
						Role:    role,
						Message: fmt.Sprintf("goals %d and %d of role %s can hold together", gi.Goal, gj.Goal, role),
						Witness: w,
					})
				}
			}
		}

		if ok, w := e.sat(terminal, anyGoal[r].Not()); ok {
			warnings = append(warnings, Warning{
				Code:    CodeTerminalWithoutGoal,
				Level:   LevelWarning,
				Role:    role,
				Message: fmt.Sprintf("a terminal assignment has no true goal for role %s", role),
				Witness: w,
			})
		}

		if ok, w := e.sat(terminal.Not(), anyLegal[r].Not()); ok {
			warnings = append(warnings, Warning{
				Code:    CodeNoLegalMove,
				Level:   LevelWarning,
				Role:    role,
				Message: fmt.Sprintf("a non-terminal assignment has no legal move for role %s", role),
				Witness: w,
			})
		}

		for _, id := range c.Legals(r) {
			if ok, _ := e.sat(e.lits[id]); !ok {
				warnings = append(warnings, Warning{
					Code:    CodeDeadLegal,
					Level:   LevelInfo,
					Role:    role,
					Message: fmt.Sprintf("legal move %s of role %s can never hold", c.Component(id).Move, role),
				})
			}
		}
	}

	warnings = append(warnings, FeedbackLoops(c)...)
	logger.Debug("analysis complete",
		"circuit", c.Name(),
		"sat_queries", e.queries,
		"warnings", len(warnings))
	return warnings, nil
}
