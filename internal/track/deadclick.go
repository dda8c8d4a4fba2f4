package track

import (
	"time"

	"github.com/lnnemml/pulse/internal/browser"
	"github.com/lnnemml/pulse/internal/event"
)

// DefaultDeadClickThrottle is the global minimum spacing between
// dead_click events.
const DefaultDeadClickThrottle = time.Second

// maxAncestorWalk bounds the ancestor walk when looking for an
// interactive element above the click target.
const maxAncestorWalk = 5

// DeadClickTracker classifies clicks on elements that look interactive
// but are not: no interactive element within five ancestor levels, while
// the computed cursor or link-colored text suggests an affordance.
type DeadClickTracker struct {
	emitter   *event.Emitter
	throttle  time.Duration
	lastFired time.Time
}

// NewDeadClickTracker creates a dead-click tracker. throttle defaults to
// DefaultDeadClickThrottle when zero.
func NewDeadClickTracker(emitter *event.Emitter, throttle time.Duration) *DeadClickTracker {
	if throttle <= 0 {
		throttle = DefaultDeadClickThrottle
	}
	return &DeadClickTracker{emitter: emitter, throttle: throttle}
}

// IsDead reports whether the click qualifies as a dead click.
func IsDead(c browser.Click) bool {
	if browser.Interactive(c.Target) {
		return false
	}
	walk := c.Ancestry
	if len(walk) > maxAncestorWalk {
		walk = walk[:maxAncestorWalk]
	}
	for _, el := range walk {
		if browser.Interactive(el) {
			return false
		}
	}
	return c.Target.Cursor == "pointer" || c.Target.LinkColor
}

// OnClick emits at most one dead_click per throttle window, no matter how
// many qualifying clicks arrive.
func (t *DeadClickTracker) OnClick(c browser.Click, now time.Time) {
	if !IsDead(c) {
		return
	}
	if !t.lastFired.IsZero() && now.Sub(t.lastFired) < t.throttle {
		return
	}
	t.lastFired = now
	t.emitter.Emit("dead_click", event.Payload{
		"tag":     c.Target.Tag,
		"id":      c.Target.ID,
		"classes": c.Target.Classes,
		"x":       c.X,
		"y":       c.Y,
	})
}
