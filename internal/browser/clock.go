package browser

import "time"

// Clock supplies wall-clock time to the engine. Every tracker reads time
// through the session's clock, never time.Now directly, so replays and
// tests control time completely.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
