package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant returned by a StepClock.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a fake wall clock for tests that need reproducible timestamps.
//
// Each call to Now advances by a fixed step, so a run that reads the clock
// at start and at finish records two distinct, predictable times.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewStepClock creates a clock starting at Epoch that advances by step.
//
// A zero step yields a frozen clock.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{next: Epoch, step: step}
}

// Now returns the current fake time and advances the clock by one step.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

// Reset moves the clock back to Epoch.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = Epoch
}
