package ir

import (
	"encoding/json"
	"slices"
	"strings"
)

// Role identifies a player.
type Role string

// Move identifies an action a role can take. Moves are the tokens attached
// to Legal and Input propositions by the network builder.
type Move string

// Sentence is the token of a Base or Input proposition, e.g. "(true (cell 1 1 x))".
type Sentence string

// State is the set of Base-proposition sentences true in a game state.
//
// A State is immutable once built. The zero value is the empty state.
type State struct {
	facts map[Sentence]struct{}
}

// NewState builds a state from the given sentences. Duplicates collapse.
func NewState(sentences ...Sentence) State {
	facts := make(map[Sentence]struct{}, len(sentences))
	for _, s := range sentences {
		facts[s] = struct{}{}
	}
	return State{facts: facts}
}

// Contains reports whether the sentence is true in the state.
func (s State) Contains(sentence Sentence) bool {
	_, ok := s.facts[sentence]
	return ok
}

// Len returns the number of true sentences.
func (s State) Len() int {
	return len(s.facts)
}

// Sentences returns the true sentences in sorted order.
func (s State) Sentences() []Sentence {
	out := make([]Sentence, 0, len(s.facts))
	for f := range s.facts {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Equal reports set equality.
func (s State) Equal(other State) bool {
	if len(s.facts) != len(other.facts) {
		return false
	}
	for f := range s.facts {
		if _, ok := other.facts[f]; !ok {
			return false
		}
	}
	return true
}

// String renders the state as a sorted, space-separated sentence list.
func (s State) String() string {
	parts := make([]string, 0, len(s.facts))
	for _, f := range s.Sentences() {
		parts = append(parts, string(f))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MarshalJSON encodes the state as a sorted array of sentences.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sentences())
}

// UnmarshalJSON decodes a sentence array.
func (s *State) UnmarshalJSON(data []byte) error {
	var sentences []Sentence
	if err := json.Unmarshal(data, &sentences); err != nil {
		return err
	}
	*s = NewState(sentences...)
	return nil
}

// ParseState splits a comma-separated sentence list. Blank entries are
// ignored, surrounding whitespace is trimmed.
func ParseState(list string) State {
	var sentences []Sentence
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, Sentence(part))
		}
	}
	return NewState(sentences...)
}
