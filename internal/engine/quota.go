package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxSteps bounds a match or playout when no limit is configured.
const DefaultMaxSteps = 1000

// QuotaEnforcer counts the joint moves played in one match and enforces a
// maximum. Games are expected to terminate; a circuit whose terminal
// proposition never comes true would otherwise play forever.
//
// Repetition detection reports revisited states but does not stop play,
// since revisiting a state is legal in many games. The quota is what
// guarantees termination.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
// Returns StepsExceededError if the quota is exceeded.
func (q *QuotaEnforcer) Check(matchID string) error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{
			MatchID: matchID,
			Steps:   q.current,
			Limit:   q.maxSteps,
		}
	}
	return nil
}

// Reset resets the step counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is returned when a match exceeds the max steps quota.
type StepsExceededError struct {
	MatchID string
	Steps   int
	Limit   int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("match %s exceeded max steps quota: %d steps > %d limit",
		e.MatchID, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
