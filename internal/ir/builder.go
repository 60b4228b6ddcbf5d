package ir

import (
	"fmt"
	"slices"
)

// Builder assembles a CircuitSpec from labelled components. IDs are assigned
// in declaration order and inputs are named by label, so components may
// reference labels declared later.
type Builder struct {
	name   string
	roles  []Role
	labels map[string]int
	comps  []ComponentSpec
	inputs [][]string
	errs   []error
}

// NewBuilder starts a circuit with the given name and ordered roles.
func NewBuilder(name string, roles ...Role) *Builder {
	return &Builder{
		name:   name,
		roles:  slices.Clone(roles),
		labels: make(map[string]int),
	}
}

// Add declares a component. The ID, Name and Inputs of c are overwritten.
func (b *Builder) Add(label string, c ComponentSpec, inputs ...string) *Builder {
	if _, dup := b.labels[label]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate component label %q", label))
		return b
	}
	c.ID = len(b.comps)
	c.Name = label
	c.Inputs = nil
	b.labels[label] = c.ID
	b.comps = append(b.comps, c)
	b.inputs = append(b.inputs, slices.Clone(inputs))
	return b
}

// Gate declares an and, or, not or transition component.
func (b *Builder) Gate(label, kind string, inputs ...string) *Builder {
	return b.Add(label, ComponentSpec{Kind: kind}, inputs...)
}

// Has reports whether a label has been declared.
func (b *Builder) Has(label string) bool {
	_, ok := b.labels[label]
	return ok
}

// Build resolves labels and returns the finished spec. It reports the first
// duplicate or unknown label.
func (b *Builder) Build() (CircuitSpec, error) {
	if len(b.errs) > 0 {
		return CircuitSpec{}, b.errs[0]
	}
	comps := make([]ComponentSpec, len(b.comps))
	for i, c := range b.comps {
		if len(b.inputs[i]) > 0 {
			c.Inputs = make([]int, len(b.inputs[i]))
			for j, label := range b.inputs[i] {
				id, ok := b.labels[label]
				if !ok {
					return CircuitSpec{}, fmt.Errorf("component %q: unknown input %q", c.Name, label)
				}
				c.Inputs[j] = id
			}
		}
		comps[i] = c
	}
	return CircuitSpec{Name: b.name, Roles: slices.Clone(b.roles), Components: comps}, nil
}

// MustBuild is Build for statically known circuits; it panics on error.
func (b *Builder) MustBuild() CircuitSpec {
	spec, err := b.Build()
	if err != nil {
		panic(err)
	}
	return spec
}
