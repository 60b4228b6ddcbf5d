package propnet

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteDot renders the circuit in Graphviz dot syntax. When vals is non-nil,
// components that are true are filled.
func WriteDot(w io.Writer, c *Circuit, vals Values) error {
	bw := bufio.NewWriter(w)
	name := c.Name()
	if name == "" {
		name = "propnet"
	}
	fmt.Fprintf(bw, "digraph %s {\n", strconv.Quote(name))
	for i := range c.components {
		comp := &c.components[i]
		attrs := "shape=" + dotShape(comp)
		if vals != nil && vals[i] {
			attrs += ", style=filled, fillcolor=lightgrey"
		}
		fmt.Fprintf(bw, "  n%d [label=%s, %s];\n", comp.ID, strconv.Quote(comp.Label()), attrs)
	}
	for i := range c.components {
		for _, in := range c.components[i].Inputs {
			fmt.Fprintf(bw, "  n%d -> n%d;\n", in, i)
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotShape(comp *Component) string {
	switch comp.Kind {
	case KindAnd:
		return "invhouse"
	case KindOr:
		return "invtriangle"
	case KindNot:
		return "invtrapezium"
	case KindTransition:
		return "box"
	case KindSource:
		return "doublecircle"
	}
	return "circle"
}
