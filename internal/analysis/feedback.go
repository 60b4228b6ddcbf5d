package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/propnet/internal/propnet"
)

// FeedbackLoops reports every strongly connected component of the circuit,
// transition-to-base edges included, as an info-level warning. Components
// are listed by their smallest member ID.
func FeedbackLoops(c *propnet.Circuit) []Warning {
	sccs := tarjanSCC(c)

	var warnings []Warning
	for _, scc := range sccs {
		if len(scc) == 1 && !hasSelfLoop(c, scc[0]) {
			continue
		}
		path := shortestCycle(c, scc)
		labels := make([]string, len(path))
		var bases int
		for i, id := range path {
			labels[i] = c.Component(id).Label()
		}
		for _, id := range scc {
			if c.Component(id).Tag == propnet.TagBase {
				bases++
			}
		}
		warnings = append(warnings, Warning{
			Code:  CodeFeedbackLoop,
			Level: LevelInfo,
			Message: fmt.Sprintf("state feedback through %d base proposition(s), %d component(s): %s",
				bases, len(scc), strings.Join(labels, " → ")),
			Path: labels,
		})
	}
	return warnings
}

func hasSelfLoop(c *propnet.Circuit, id propnet.ID) bool {
	return slices.Contains(c.Component(id).Inputs, id)
}

// tarjanSCC finds strongly connected components along input-to-output
// edges. Each component is sorted; components are sorted by first member.
func tarjanSCC(c *propnet.Circuit) [][]propnet.ID {
	n := c.Len()
	var (
		index   = 0
		stack   []propnet.ID
		indices = make([]int, n)
		lowlink = make([]int, n)
		onStack = make([]bool, n)
		sccs    [][]propnet.ID
	)
	for i := range indices {
		indices[i] = -1
	}

	var strongConnect func(propnet.ID)
	strongConnect = func(v propnet.ID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range c.Component(v).Outputs {
			if indices[w] < 0 {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []propnet.ID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for i := 0; i < n; i++ {
		if indices[i] < 0 {
			strongConnect(propnet.ID(i))
		}
	}
	slices.SortFunc(sccs, func(a, b []propnet.ID) int { return int(a[0] - b[0]) })
	return sccs
}

// shortestCycle returns a shortest cycle through the first member of scc,
// staying inside scc. The first and last entries are equal.
func shortestCycle(c *propnet.Circuit, scc []propnet.ID) []propnet.ID {
	start := scc[0]
	member := make(map[propnet.ID]bool, len(scc))
	for _, id := range scc {
		member[id] = true
	}

	prev := map[propnet.ID]propnet.ID{}
	queue := []propnet.ID{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range c.Component(v).Outputs {
			if !member[w] {
				continue
			}
			if w == start {
				path := []propnet.ID{start}
				for at := v; at != start; at = prev[at] {
					path = append(path, at)
				}
				path = append(path, start)
				slices.Reverse(path)
				return path
			}
			if _, seen := prev[w]; !seen {
				prev[w] = v
				queue = append(queue, w)
			}
		}
	}
	// Members of one SCC always reach each other.
	return []propnet.ID{start, start}
}
