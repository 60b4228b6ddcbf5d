package engine

import (
	"context"
	"fmt"
	"sync/atomic"
)

// SeqSource stamps every recorded match, step and result row. Seqs are
// strictly increasing across all matches written through one source.
type SeqSource interface {
	Next() int64
	Current() int64
}

// SeqLog is the part of a match log a clock resumes from.
type SeqLog interface {
	GetLastSeq(ctx context.Context) (int64, error)
}

// Clock is the logical clock of a recording session. It is safe for
// concurrent use.
type Clock struct {
	seq atomic.Int64
}

var _ SeqSource = (*Clock)(nil)

// NewClock returns a clock for an empty log; its first seq is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock whose first seq is last+1.
func NewClockAt(last int64) *Clock {
	c := &Clock{}
	c.seq.Store(last)
	return c
}

// ResumeClock returns a clock that continues after the highest seq already
// in log, so matches recorded by separate sessions never share a seq.
func ResumeClock(ctx context.Context, log SeqLog) (*Clock, error) {
	last, err := log.GetLastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume clock: %w", err)
	}
	return NewClockAt(last), nil
}

func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last seq handed out, or the resume point.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
