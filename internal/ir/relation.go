package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Relation is a parsed sentence such as "(legal robot (mark 1 1))": a name
// and its top-level argument terms, each kept verbatim.
type Relation struct {
	Name string
	Args []string
}

// ParseRelation splits a parenthesized sentence into its name and top-level
// arguments. A bare constant parses as a relation with no arguments.
func ParseRelation(s Sentence) (Relation, error) {
	text := strings.TrimSpace(string(s))
	if text == "" {
		return Relation{}, fmt.Errorf("empty sentence")
	}
	if !strings.HasPrefix(text, "(") {
		if strings.ContainsAny(text, "() \t\n") {
			return Relation{}, fmt.Errorf("malformed sentence %q", s)
		}
		return Relation{Name: text}, nil
	}
	if !strings.HasSuffix(text, ")") {
		return Relation{}, fmt.Errorf("malformed sentence %q: missing closing parenthesis", s)
	}

	terms, err := splitTerms(text[1 : len(text)-1])
	if err != nil {
		return Relation{}, fmt.Errorf("malformed sentence %q: %w", s, err)
	}
	if len(terms) == 0 || strings.HasPrefix(terms[0], "(") {
		return Relation{}, fmt.Errorf("malformed sentence %q: missing relation name", s)
	}
	return Relation{Name: terms[0], Args: terms[1:]}, nil
}

func splitTerms(body string) ([]string, error) {
	var terms []string
	depth, start := 0, -1
	for i, r := range body {
		switch {
		case r == '(':
			if depth == 0 && start < 0 {
				start = i
			}
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parenthesis at offset %d", i)
			}
			if depth == 0 {
				terms = append(terms, body[start:i+1])
				start = -1
			}
		case r == ' ' || r == '\t' || r == '\n':
			if depth == 0 && start >= 0 {
				terms = append(terms, body[start:i])
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parenthesis")
	}
	if start >= 0 {
		terms = append(terms, body[start:])
	}
	return terms, nil
}

// RoleMove extracts role and move from a (legal R M) or (does R M) sentence.
func RoleMove(s Sentence) (Role, Move, error) {
	rel, err := ParseRelation(s)
	if err != nil {
		return "", "", err
	}
	if (rel.Name != "legal" && rel.Name != "does") || len(rel.Args) != 2 {
		return "", "", fmt.Errorf("sentence %q is not (legal role move) or (does role move)", s)
	}
	return Role(rel.Args[0]), Move(rel.Args[1]), nil
}

// RoleGoal extracts role and value from a (goal R N) sentence.
func RoleGoal(s Sentence) (Role, int64, error) {
	rel, err := ParseRelation(s)
	if err != nil {
		return "", 0, err
	}
	if rel.Name != "goal" || len(rel.Args) != 2 {
		return "", 0, fmt.Errorf("sentence %q is not (goal role value)", s)
	}
	v, err := strconv.ParseInt(rel.Args[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("sentence %q: goal value: %w", s, err)
	}
	return Role(rel.Args[0]), v, nil
}
