// Package exitintent combines pointer-leave, visibility, and navigation
// signals into a single once-per-session "user is leaving" event.
package exitintent

import (
	"time"

	"github.com/lnnemml/pulse/internal/cart"
	"github.com/lnnemml/pulse/internal/event"
	"github.com/lnnemml/pulse/internal/page"
	"github.com/lnnemml/pulse/internal/storage"
	"github.com/lnnemml/pulse/internal/track"
)

// Trigger labels carried on exit_intent events.
const (
	TriggerMouseLeave = "mouse_leave"
	TriggerVisibility = "visibility_hidden"
	TriggerNavigation = "navigation"
	TriggerPageExit   = "page_exit"
)

// Detection gates: a minimum dwell before any exit counts as intent, and a
// debounce between attempts.
const (
	DefaultMinDwell = 5 * time.Second
	DefaultDebounce = 500 * time.Millisecond
)

// Detector fires exit_intent at most once per session, after the minimum
// dwell, debounced across rapid repeated triggers. Idempotency holds
// across page loads within a session via a session-scoped marker.
type Detector struct {
	emitter  *event.Emitter
	resolver *page.Resolver
	scopes   storage.Scopes
	scroll   *track.ScrollTracker
	cart     *cart.Machine

	loadedAt    time.Time
	minDwell    time.Duration
	debounce    time.Duration
	lastAttempt time.Time
	fired       bool
}

// NewDetector creates a detector anchored at loadedAt. The session-scoped
// fired marker is honored, so a detector on a later page of the same
// session starts already spent. minDwell and debounce fall back to the
// defaults when zero.
func NewDetector(emitter *event.Emitter, resolver *page.Resolver, scopes storage.Scopes, scroll *track.ScrollTracker, cartMachine *cart.Machine, loadedAt time.Time, minDwell, debounce time.Duration) *Detector {
	if minDwell <= 0 {
		minDwell = DefaultMinDwell
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	d := &Detector{
		emitter:  emitter,
		resolver: resolver,
		scopes:   scopes,
		scroll:   scroll,
		cart:     cartMachine,
		loadedAt: loadedAt,
		minDwell: minDwell,
		debounce: debounce,
	}
	if _, ok := scopes.Session.Get(storage.KeyExitIntentFired); ok {
		d.fired = true
	}
	return d
}

// OnPointerLeave handles a mouseout that truly left the window. Only a
// top-edge crossing on a non-mobile device counts.
func (d *Detector) OnPointerLeave(y int, now time.Time) {
	if y > 0 || d.resolver.ClassifyDevice() == page.DeviceMobile {
		return
	}
	d.attempt(TriggerMouseLeave, now)
}

// OnHidden handles visibilitychange to hidden.
func (d *Detector) OnHidden(now time.Time) {
	d.attempt(TriggerVisibility, now)
}

// OnNavigate handles popstate/back-button navigation.
func (d *Detector) OnNavigate(now time.Time) {
	d.attempt(TriggerNavigation, now)
}

// OnPageHide is the catch-all unload trigger on any device.
func (d *Detector) OnPageHide(now time.Time) {
	d.attempt(TriggerPageExit, now)
}

func (d *Detector) attempt(trigger string, now time.Time) {
	if d.fired {
		return
	}
	if now.Sub(d.loadedAt) < d.minDwell {
		return
	}
	if !d.lastAttempt.IsZero() && now.Sub(d.lastAttempt) < d.debounce {
		d.lastAttempt = now
		return
	}
	d.lastAttempt = now

	d.fired = true
	storage.Put(d.scopes.Session, storage.KeyExitIntentFired, "1")

	d.emitter.Emit("exit_intent", event.Payload{
		"trigger":       trigger,
		"dwell_seconds": int(now.Sub(d.loadedAt) / time.Second),
		"scroll_depth":  d.scroll.MaxDepth(),
		"cart_value":    d.cart.Value(),
		"item_count":    d.cart.ItemCount(),
	})
	d.cart.EmitExitAbandonment(now)
}
