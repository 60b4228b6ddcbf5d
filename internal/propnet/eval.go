package propnet

import "slices"

// Values is one truth assignment, indexed by component ID. Source slots are
// written by the caller; every other slot is overwritten by Propagate.
type Values []bool

// Evaluator runs single-pass propagation over a fixed ordering. It holds no
// mutable state and is safe for concurrent use; each query owns its Values.
type Evaluator struct {
	c     *Circuit
	order Ordering
}

// NewEvaluator computes the circuit's ordering. It fails with a CycleError
// when the non-source subgraph is not acyclic.
func NewEvaluator(c *Circuit) (*Evaluator, error) {
	order, err := ComputeOrdering(c)
	if err != nil {
		return nil, err
	}
	return &Evaluator{c: c, order: order}, nil
}

// Circuit returns the evaluated circuit.
func (e *Evaluator) Circuit() *Circuit { return e.c }

// Ordering returns a copy of the evaluation order.
func (e *Evaluator) Ordering() Ordering { return slices.Clone(e.order) }

// NewValues allocates an assignment with every source false except constant
// propositions, which carry their declared value.
func (e *Evaluator) NewValues() Values {
	vals := make(Values, e.c.Len())
	for i := range e.c.components {
		if e.c.components[i].Tag == TagConstant {
			vals[i] = e.c.components[i].Value
		}
	}
	return vals
}

// Propagate computes every non-source slot of vals from its inputs, visiting
// each component exactly once. Source slots are read, never written.
func (e *Evaluator) Propagate(vals Values) {
	comps := e.c.components
	for _, id := range e.order {
		comp := &comps[id]
		switch comp.Kind {
		case KindAnd:
			v := true
			for _, in := range comp.Inputs {
				if !vals[in] {
					v = false
					break
				}
			}
			vals[id] = v
		case KindOr:
			v := false
			for _, in := range comp.Inputs {
				if vals[in] {
					v = true
					break
				}
			}
			vals[id] = v
		case KindNot:
			vals[id] = !vals[comp.Inputs[0]]
		case KindTransition, KindDerived:
			vals[id] = vals[comp.Inputs[0]]
		}
	}
}
