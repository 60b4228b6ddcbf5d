package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while playing or replaying a
// match.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// MatchID identifies the affected match.
	MatchID string

	// Step is the step at which the error was detected, -1 when the error
	// concerns the match as a whole.
	Step int

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeQuotaExceeded indicates the match exceeded max steps.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeReplayDiverged indicates a recorded state differs from the
	// state the machine computes from the recorded moves.
	ErrCodeReplayDiverged RuntimeErrorCode = "REPLAY_DIVERGED"

	// ErrCodeCircuitMismatch indicates a recorded match was played on a
	// different circuit.
	ErrCodeCircuitMismatch RuntimeErrorCode = "CIRCUIT_MISMATCH"

	// ErrCodeMissingPolicy indicates a role has no policy.
	ErrCodeMissingPolicy RuntimeErrorCode = "MISSING_POLICY"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.MatchID != "" && e.Step >= 0 {
		return fmt.Sprintf("%s: %s (match=%s, step=%d)", e.Code, e.Message, e.MatchID, e.Step)
	}
	if e.MatchID != "" {
		return fmt.Sprintf("%s: %s (match=%s)", e.Code, e.Message, e.MatchID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsQuotaError returns true if the error is a quota exceeded error.
// Matches both RuntimeError with ErrCodeQuotaExceeded and StepsExceededError.
func IsQuotaError(err error) bool {
	if hasCode(err, ErrCodeQuotaExceeded) {
		return true
	}
	return IsStepsExceededError(err)
}

// IsReplayDivergedError returns true if a replay found a state mismatch.
func IsReplayDivergedError(err error) bool {
	return hasCode(err, ErrCodeReplayDiverged)
}

// IsCircuitMismatchError returns true if a recording belongs to another
// circuit.
func IsCircuitMismatchError(err error) bool {
	return hasCode(err, ErrCodeCircuitMismatch)
}

// NewQuotaError creates a RuntimeError for quota exceeded.
func NewQuotaError(matchID string, steps, maxSteps int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("match exceeded max steps (%d > %d)", steps, maxSteps),
		MatchID: matchID,
		Step:    -1,
		Details: map[string]string{
			"steps":     fmt.Sprintf("%d", steps),
			"max_steps": fmt.Sprintf("%d", maxSteps),
		},
	}
}

// NewReplayDivergedError creates a RuntimeError for a replay mismatch.
func NewReplayDivergedError(matchID string, step int, what, recorded, computed string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeReplayDiverged,
		Message: fmt.Sprintf("recorded %s does not match replay", what),
		MatchID: matchID,
		Step:    step,
		Details: map[string]string{
			"recorded": recorded,
			"computed": computed,
		},
	}
}

// NewCircuitMismatchError creates a RuntimeError for a recording made on a
// different circuit.
func NewCircuitMismatchError(matchID, what, recorded, current string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCircuitMismatch,
		Message: fmt.Sprintf("recorded %s %q differs from circuit %s %q", what, recorded, what, current),
		MatchID: matchID,
		Step:    -1,
	}
}
