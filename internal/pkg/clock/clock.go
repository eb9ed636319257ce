// Package clock supplies the timestamps stamped on stored characters and
// export documents. Everything is UTC so stored documents compare equal
// across hosts.
package clock

import (
	"sync"
	"time"
)

// Clock is injected wherever a write time is recorded
type Clock interface {
	Now() time.Time
}

// Real reads the system clock
type Real struct{}

func (c *Real) Now() time.Time {
	return time.Now().UTC()
}

func New() Clock {
	return &Real{}
}

// Stepping is a deterministic clock for tests. Each call to Now advances
// the clock by Step.
type Stepping struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewStepping creates a stepping clock starting at start
func NewStepping(start time.Time, step time.Duration) *Stepping {
	return &Stepping{current: start.UTC(), step: step}
}

// Now returns the current time and advances the clock
func (c *Stepping) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}
