package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainState     = "propnet/state/v1"
	DomainJointMove = "propnet/joint-move/v1"
	DomainCircuit   = "propnet/circuit/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateID computes the content-addressed ID of a state. Two states with the
// same sentence set always share an ID regardless of construction order.
func StateID(s State) string {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		// Sentences are strings; canonical marshaling cannot fail.
		panic(fmt.Sprintf("StateID: %v", err))
	}
	return hashWithDomain(DomainState, canonical)
}

// JointMoveID computes the content-addressed ID of a joint move. Order is
// significant: moves are listed in role order.
func JointMoveID(moves []Move) string {
	items := make([]any, len(moves))
	for i, m := range moves {
		items[i] = string(m)
	}
	canonical, err := MarshalCanonical(items)
	if err != nil {
		panic(fmt.Sprintf("JointMoveID: %v", err))
	}
	return hashWithDomain(DomainJointMove, canonical)
}

// CircuitHash computes the content-addressed hash of a circuit description.
// Component names are excluded: two builders emitting the same graph with
// different labels produce the same hash.
func CircuitHash(spec CircuitSpec) (string, error) {
	roles := make([]any, len(spec.Roles))
	for i, r := range spec.Roles {
		roles[i] = string(r)
	}

	comps := make([]any, len(spec.Components))
	for i, c := range spec.Components {
		inputs := make([]any, len(c.Inputs))
		for j, in := range c.Inputs {
			inputs[j] = in
		}
		comps[i] = map[string]any{
			"id":       c.ID,
			"kind":     c.Kind,
			"inputs":   inputs,
			"sentence": string(c.Sentence),
			"role":     string(c.Role),
			"move":     string(c.Move),
			"goal":     c.Goal,
			"value":    c.Value,
		}
	}

	canonical, err := MarshalCanonical(map[string]any{
		"roles":      roles,
		"components": comps,
	})
	if err != nil {
		return "", fmt.Errorf("CircuitHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCircuit, canonical), nil
}
