package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/propnet/internal/ir"
)

// componentFields lists every field a component struct may carry.
var componentFields = map[string]bool{
	"kind":     true,
	"inputs":   true,
	"sentence": true,
	"role":     true,
	"move":     true,
	"goal":     true,
	"value":    true,
}

// CompileCircuit parses a CUE value into a CircuitSpec.
//
// The value holds an optional name, the ordered roles and a components
// struct. Components are numbered in declaration order and name their inputs
// by label:
//
//	name:  "light"
//	roles: ["robot"]
//	components: {
//		init:   {kind: "init"}
//		on:     {kind: "base", sentence: "(true on)", inputs: ["next"]}
//		next:   {kind: "transition", inputs: ["flip"]}
//		legal:  {kind: "legal", sentence: "(legal robot toggle)", inputs: ["off"]}
//	}
//
// Legal, input and goal components may give role, move and goal explicitly
// or through their sentence: (legal R M), (does R M), (goal R N).
func CompileCircuit(v cue.Value) (*ir.CircuitSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var name string
	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		s, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		name = s
	}

	roles, err := parseRoles(v)
	if err != nil {
		return nil, err
	}

	compsVal := v.LookupPath(cue.ParsePath("components"))
	if !compsVal.Exists() {
		return nil, &CompileError{
			Field:   "components",
			Message: "components is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := compsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	b := ir.NewBuilder(name, roles...)
	type pendingInput struct {
		owner string
		label string
		pos   cue.Value
	}
	var pending []pendingInput

	for iter.Next() {
		label := iter.Label()
		comp, inputs, err := parseComponent(label, iter.Value())
		if err != nil {
			return nil, err
		}
		labels := make([]string, len(inputs))
		for i, in := range inputs {
			s, err := in.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			labels[i] = s
			pending = append(pending, pendingInput{owner: label, label: s, pos: in})
		}
		b.Add(label, comp, labels...)
	}

	for _, p := range pending {
		if !b.Has(p.label) {
			return nil, &CompileError{
				Field:   "components." + p.owner + ".inputs",
				Message: fmt.Sprintf("unknown component %q", p.label),
				Pos:     p.pos.Pos(),
			}
		}
	}

	spec, err := b.Build()
	if err != nil {
		return nil, &CompileError{Field: "components", Message: err.Error(), Pos: compsVal.Pos()}
	}
	return &spec, nil
}

func parseRoles(v cue.Value) ([]ir.Role, error) {
	rolesVal := v.LookupPath(cue.ParsePath("roles"))
	if !rolesVal.Exists() {
		return nil, &CompileError{
			Field:   "roles",
			Message: "roles is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := rolesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var roles []ir.Role
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		roles = append(roles, ir.Role(s))
	}
	if len(roles) == 0 {
		return nil, &CompileError{
			Field:   "roles",
			Message: "at least one role is required",
			Pos:     rolesVal.Pos(),
		}
	}
	return roles, nil
}

// parseComponent reads one component struct. Inputs are returned as CUE
// values so unresolved labels can be reported with their position.
func parseComponent(label string, v cue.Value) (ir.ComponentSpec, []cue.Value, error) {
	var comp ir.ComponentSpec
	field := "components." + label

	fields, err := v.Fields()
	if err != nil {
		return comp, nil, formatCUEError(err)
	}
	for fields.Next() {
		name := fields.Label()
		if !componentFields[name] {
			return comp, nil, &CompileError{
				Field:   field + "." + name,
				Message: "unknown component field",
				Pos:     fields.Value().Pos(),
			}
		}
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return comp, nil, &CompileError{Field: field + ".kind", Message: "kind is required", Pos: v.Pos()}
	}
	kind, err := kindVal.String()
	if err != nil {
		return comp, nil, formatCUEError(err)
	}
	if !ir.ValidKinds[kind] {
		return comp, nil, &CompileError{
			Field:   field + ".kind",
			Message: fmt.Sprintf("unknown kind %q", kind),
			Pos:     kindVal.Pos(),
		}
	}
	comp.Kind = kind

	if s, ok, err := optionalString(v, "sentence"); err != nil {
		return comp, nil, err
	} else if ok {
		comp.Sentence = ir.Sentence(s)
	}
	if s, ok, err := optionalString(v, "role"); err != nil {
		return comp, nil, err
	} else if ok {
		comp.Role = ir.Role(s)
	}
	if s, ok, err := optionalString(v, "move"); err != nil {
		return comp, nil, err
	} else if ok {
		comp.Move = ir.Move(s)
	}

	goalSet := false
	if goalVal := v.LookupPath(cue.ParsePath("goal")); goalVal.Exists() {
		g, err := goalVal.Int64()
		if err != nil {
			return comp, nil, formatCUEError(err)
		}
		comp.Goal = g
		goalSet = true
	}
	if valueVal := v.LookupPath(cue.ParsePath("value")); valueVal.Exists() {
		b, err := valueVal.Bool()
		if err != nil {
			return comp, nil, formatCUEError(err)
		}
		comp.Value = b
	}

	if err := deriveFromSentence(&comp, goalSet); err != nil {
		return comp, nil, &CompileError{Field: field + ".sentence", Message: err.Error(), Pos: v.Pos()}
	}

	var inputs []cue.Value
	if inputsVal := v.LookupPath(cue.ParsePath("inputs")); inputsVal.Exists() {
		list, err := inputsVal.List()
		if err != nil {
			return comp, nil, formatCUEError(err)
		}
		for list.Next() {
			inputs = append(inputs, list.Value())
		}
	}
	return comp, inputs, nil
}

// deriveFromSentence fills role, move and goal from the sentence of legal,
// input and goal components when they were not given explicitly.
func deriveFromSentence(comp *ir.ComponentSpec, goalSet bool) error {
	if comp.Sentence == "" {
		return nil
	}
	switch comp.Kind {
	case ir.KindLegal, ir.KindInput:
		if comp.Role != "" && comp.Move != "" {
			return nil
		}
		r, m, err := ir.RoleMove(comp.Sentence)
		if err != nil {
			return err
		}
		if comp.Role == "" {
			comp.Role = r
		}
		if comp.Move == "" {
			comp.Move = m
		}
	case ir.KindGoal:
		if comp.Role != "" && goalSet {
			return nil
		}
		r, g, err := ir.RoleGoal(comp.Sentence)
		if err != nil {
			return err
		}
		if comp.Role == "" {
			comp.Role = r
		}
		if !goalSet {
			comp.Goal = g
		}
	}
	return nil
}

func optionalString(v cue.Value, name string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}
