package engine

import "sync"

// RepetitionDetector tracks the states visited in each match.
//
// A repeated state means the players are going around a loop. That is
// legal, so the Runner only counts and logs repeats; the step quota ends
// matches that never terminate.
//
// Thread-safety: safe for concurrent use.
type RepetitionDetector struct {
	mu      sync.Mutex
	history map[string]map[string]int // match ID -> state ID -> first step
}

// NewRepetitionDetector creates an empty detector.
func NewRepetitionDetector() *RepetitionDetector {
	return &RepetitionDetector{
		history: make(map[string]map[string]int),
	}
}

// Visit records stateID at step and reports the step at which the state was
// first seen, if it was seen before in this match.
func (d *RepetitionDetector) Visit(matchID, stateID string, step int) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	seen := d.history[matchID]
	if seen == nil {
		seen = make(map[string]int)
		d.history[matchID] = seen
	}
	if first, ok := seen[stateID]; ok {
		return first, true
	}
	seen[stateID] = step
	return 0, false
}

// Clear removes all history for a match.
func (d *RepetitionDetector) Clear(matchID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.history, matchID)
}

// HistorySize returns the number of matches with tracked history.
func (d *RepetitionDetector) HistorySize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history)
}

// MatchHistorySize returns the number of distinct states seen in a match.
func (d *RepetitionDetector) MatchHistorySize(matchID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history[matchID])
}
