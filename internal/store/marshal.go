package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/propnet/internal/ir"
)

// marshalCanonical converts a value to canonical JSON TEXT for storage.
// RFC 8785 canonical JSON keeps stored rows byte-identical across runs.
func marshalCanonical(what string, v any) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	return string(data), nil
}

// unmarshalRoles parses a JSON role array. Empty text yields no roles.
func unmarshalRoles(data string) ([]ir.Role, error) {
	var roles []ir.Role
	if data == "" {
		return roles, nil
	}
	if err := json.Unmarshal([]byte(data), &roles); err != nil {
		return nil, fmt.Errorf("unmarshal roles: %w", err)
	}
	return roles, nil
}

// unmarshalMoves parses a JSON move array.
func unmarshalMoves(data string) ([]ir.Move, error) {
	moves := []ir.Move{}
	if data == "" {
		return moves, nil
	}
	if err := json.Unmarshal([]byte(data), &moves); err != nil {
		return nil, fmt.Errorf("unmarshal moves: %w", err)
	}
	return moves, nil
}

// unmarshalState parses a JSON sentence array.
func unmarshalState(data string) (ir.State, error) {
	var state ir.State
	if data == "" {
		return ir.NewState(), nil
	}
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return ir.State{}, fmt.Errorf("unmarshal state: %w", err)
	}
	return state, nil
}

// unmarshalGoals parses a JSON integer array.
func unmarshalGoals(data string) ([]int, error) {
	goals := []int{}
	if data == "" {
		return goals, nil
	}
	if err := json.Unmarshal([]byte(data), &goals); err != nil {
		return nil, fmt.Errorf("unmarshal goals: %w", err)
	}
	return goals, nil
}
