package track

import (
	"time"

	"github.com/lnnemml/pulse/internal/browser"
	"github.com/lnnemml/pulse/internal/event"
)

// Click-rage defaults: three clicks inside a two-second window within a
// 50px radius (or on the same target). Rage events throttle at double the
// base interaction throttle.
const (
	DefaultRageThreshold = 3
	DefaultRageWindow    = 2 * time.Second
	DefaultRageRadius    = 50
	DefaultRageThrottle  = 2 * DefaultDeadClickThrottle
)

// clickRecord is one entry of the click history ring.
type clickRecord struct {
	at       time.Time
	x, y     int
	identity string
}

// RageTracker detects rapid repeated clicking in a small spatial or
// same-target window. The history ring is pruned to the window on every
// click and cleared when a rage event fires; it never survives a reload.
type RageTracker struct {
	emitter   *event.Emitter
	threshold int
	window    time.Duration
	radius    int
	throttle  time.Duration

	ring      []clickRecord
	lastFired time.Time
}

// NewRageTracker creates a rage tracker with defaults for zero options.
func NewRageTracker(emitter *event.Emitter, threshold int, window time.Duration, radius int, throttle time.Duration) *RageTracker {
	if threshold <= 0 {
		threshold = DefaultRageThreshold
	}
	if window <= 0 {
		window = DefaultRageWindow
	}
	if radius <= 0 {
		radius = DefaultRageRadius
	}
	if throttle <= 0 {
		throttle = DefaultRageThrottle
	}
	return &RageTracker{emitter: emitter, threshold: threshold, window: window, radius: radius, throttle: throttle}
}

// OnClick prunes the ring, counts prior clicks matching the current one by
// radius and by target identity, and fires click_rage when either count
// reaches threshold-1 prior matches (current click included in the total).
func (t *RageTracker) OnClick(c browser.Click, now time.Time) {
	t.prune(now)

	var nearby, sameTarget int
	oldest := now
	identity := c.Target.Identity()
	for _, rec := range t.ring {
		match := false
		if t.within(rec, c) {
			nearby++
			match = true
		}
		if rec.identity == identity {
			sameTarget++
			match = true
		}
		if match && rec.at.Before(oldest) {
			oldest = rec.at
		}
	}

	if nearby >= t.threshold-1 || sameTarget >= t.threshold-1 {
		if t.lastFired.IsZero() || now.Sub(t.lastFired) >= t.throttle {
			count := nearby
			if sameTarget > count {
				count = sameTarget
			}
			t.lastFired = now
			t.ring = nil
			t.emitter.Emit("click_rage", event.Payload{
				"click_count":        count + 1,
				"time_span_ms":       int(now.Sub(oldest) / time.Millisecond),
				"target_interactive": browser.Interactive(c.Target),
				"target":             identity,
			})
			return
		}
	}

	t.ring = append(t.ring, clickRecord{at: now, x: c.X, y: c.Y, identity: identity})
}

func (t *RageTracker) prune(now time.Time) {
	cutoff := now.Add(-t.window)
	kept := t.ring[:0]
	for _, rec := range t.ring {
		if rec.at.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	t.ring = kept
}

func (t *RageTracker) within(rec clickRecord, c browser.Click) bool {
	dx, dy := rec.x-c.X, rec.y-c.Y
	return dx*dx+dy*dy <= t.radius*t.radius
}
