// Package testutil provides deterministic test doubles: a manual clock
// and an event-capturing sink.
package testutil

import (
	"sync"
	"time"
)

// Epoch is the base instant manual clocks start at unless told otherwise.
var Epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// ManualClock is a settable wall clock for tests and replays.
//
// Unlike the system clock it only moves when told to, so the same signal
// script always produces the same timestamps and the same event stream.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock at Epoch.
func NewManualClock() *ManualClock {
	return &ManualClock{now: Epoch}
}

// NewManualClockAt creates a clock at a specific instant.
func NewManualClockAt(at time.Time) *ManualClock {
	return &ManualClock{now: at}
}

// Now returns the clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to an absolute instant. Never moves backward
// silently: setting an earlier instant panics, matching the monotonic
// expectation trackers have of wall clocks.
func (c *ManualClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if at.Before(c.now) {
		panic("testutil: manual clock moved backward")
	}
	c.now = at
}
