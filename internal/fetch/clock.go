package fetch

import "sync/atomic"

// Clock is a monotonic generation counter.
//
// Each Submit stamps its request with Next(); a completion is current only
// while its generation equals Current().
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	gen atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next generation and advances the clock.
func (c *Clock) Next() int64 {
	return c.gen.Add(1)
}

// Current returns the latest generation without advancing.
func (c *Clock) Current() int64 {
	return c.gen.Load()
}
