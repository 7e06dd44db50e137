package pipeline

import "sync/atomic"

// Clock hands out strictly increasing sequence numbers for completions.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last handed out sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
