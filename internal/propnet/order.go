package propnet

import (
	"fmt"
	"slices"
)

// Ordering is a linearization of every non-source component such that each
// component appears after all of its non-source inputs.
type Ordering []ID

// ComputeOrdering linearizes the circuit with Kahn's algorithm. Ready
// components are released in ascending ID order, so the result is
// deterministic for a given circuit.
//
// Sources (base, input, constant and input-less init) are excluded and never
// count as dependencies; the transition feeding a base therefore closes no
// loop within one pass. Any remaining loop is reported as a CycleError.
func ComputeOrdering(c *Circuit) (Ordering, error) {
	n := c.Len()
	pending := make([]int, n)
	var ready []ID
	computed := 0

	for i := range c.components {
		comp := &c.components[i]
		if comp.IsSource() {
			continue
		}
		computed++
		for _, in := range comp.Inputs {
			if !c.components[in].IsSource() {
				pending[i]++
			}
		}
		if pending[i] == 0 {
			ready = append(ready, comp.ID)
		}
	}

	order := make(Ordering, 0, computed)
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, out := range c.components[id].Outputs {
			if c.components[out].IsSource() {
				continue
			}
			pending[out]--
			if pending[out] == 0 {
				ready = append(ready, out)
			}
		}
	}

	if len(order) != computed {
		return nil, findCycle(c, pending)
	}
	return order, nil
}

// findCycle extracts one concrete loop from the components Kahn's algorithm
// could not release. Every such component still has an unreleased non-source
// input, so walking inputs backwards must revisit a component.
func findCycle(c *Circuit, pending []int) *CycleError {
	start := ID(-1)
	for i, p := range pending {
		if p > 0 {
			start = ID(i)
			break
		}
	}

	seen := make(map[ID]int)
	var walk []ID
	for cur := start; ; {
		if at, ok := seen[cur]; ok {
			walk = append(walk[at:], cur)
			break
		}
		seen[cur] = len(walk)
		walk = append(walk, cur)
		cur = stuckInput(c, cur, pending)
	}

	// Walked against the edges; report in evaluation direction.
	slices.Reverse(walk)
	labels := make([]string, len(walk))
	for i, id := range walk {
		labels[i] = c.components[id].Label()
	}
	return &CycleError{Path: walk, Labels: labels}
}

func stuckInput(c *Circuit, id ID, pending []int) ID {
	for _, in := range c.components[id].Inputs {
		if !c.components[in].IsSource() && pending[in] > 0 {
			return in
		}
	}
	// Unreachable for a component left over by ComputeOrdering.
	panic(fmt.Sprintf("propnet: component %d has no unreleased input", id))
}

// CheckOrdering verifies that order covers every non-source component exactly
// once and places each after its non-source inputs.
func CheckOrdering(c *Circuit, order Ordering) error {
	pos := make([]int, c.Len())
	for i := range pos {
		pos[i] = -1
	}
	for i, id := range order {
		if id < 0 || int(id) >= c.Len() {
			return fmt.Errorf("ordering: index %d: component %d out of range", i, id)
		}
		if c.components[id].IsSource() {
			return fmt.Errorf("ordering: index %d: source %s must not be ordered", i, c.components[id].Label())
		}
		if pos[id] >= 0 {
			return fmt.Errorf("ordering: component %s appears twice", c.components[id].Label())
		}
		pos[id] = i
	}
	for i := range c.components {
		comp := &c.components[i]
		if comp.IsSource() {
			continue
		}
		if pos[i] < 0 {
			return fmt.Errorf("ordering: component %s missing", comp.Label())
		}
		for _, in := range comp.Inputs {
			if c.components[in].IsSource() {
				continue
			}
			if pos[in] >= pos[i] {
				return fmt.Errorf("ordering: %s evaluated before its input %s",
					comp.Label(), c.components[in].Label())
			}
		}
	}
	return nil
}
