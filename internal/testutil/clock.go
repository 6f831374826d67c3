// Package testutil provides deterministic time and identifier sources for
// tests and conformance scripts.
package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start time for SteppingClock.
var Epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// SteppingClock is a fake wall clock. The first Now returns start and each
// later call advances by step, so every timestamp taken in a test is
// distinct and reproducible.
//
// Thread-safety: all methods are safe for concurrent use.
type SteppingClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// NewSteppingClock creates a clock starting at start. A zero start means
// Epoch and a zero step means one second.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	if start.IsZero() {
		start = Epoch
	}
	if step == 0 {
		step = time.Second
	}
	return &SteppingClock{start: start, step: step}
}

// Now returns the next timestamp.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Peek returns the timestamp the next Now call will return.
func (c *SteppingClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start.Add(time.Duration(c.n) * c.step)
}

// Reset rewinds the clock so the next Now returns start again.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
