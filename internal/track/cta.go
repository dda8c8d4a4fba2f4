package track

import (
	"time"

	"github.com/lnnemml/pulse/internal/browser"
	"github.com/lnnemml/pulse/internal/event"
)

// ctaVisibleRatio is the intersection ratio at which a CTA counts as seen.
const ctaVisibleRatio = 0.5

// CTATracker watches a fixed set of call-to-action elements: cta_visible
// fires once per element on first 50% visibility; cta_click fires on every
// click, annotated with scroll depth and time on page at the moment of the
// click.
type CTATracker struct {
	emitter *event.Emitter
	scroll  *ScrollTracker
	timer   *TimeTracker
	ids     map[string]bool
	seen    map[string]bool
}

// NewCTATracker creates a CTA tracker for the given element ids.
func NewCTATracker(emitter *event.Emitter, scroll *ScrollTracker, timer *TimeTracker, ids []string) *CTATracker {
	watched := make(map[string]bool, len(ids))
	for _, id := range ids {
		watched[id] = true
	}
	return &CTATracker{
		emitter: emitter,
		scroll:  scroll,
		timer:   timer,
		ids:     watched,
		seen:    make(map[string]bool),
	}
}

// OnIntersection fires cta_visible the first time each watched element
// crosses the visibility ratio, never again for that element.
func (t *CTATracker) OnIntersection(sig browser.SectionVisibility) {
	if !t.ids[sig.SectionID] || t.seen[sig.SectionID] {
		return
	}
	if !sig.Intersecting || sig.Ratio < ctaVisibleRatio {
		return
	}
	t.seen[sig.SectionID] = true
	t.emitter.Emit("cta_visible", event.Payload{
		"cta_id": sig.SectionID,
	})
}

// OnClick fires cta_click unconditionally when the click target (or an
// ancestor) is a watched element.
func (t *CTATracker) OnClick(c browser.Click, now time.Time) {
	id := t.match(c)
	if id == "" {
		return
	}
	t.emitter.Emit("cta_click", event.Payload{
		"cta_id":          id,
		"scroll_depth":    t.scroll.MaxDepth(),
		"seconds_on_page": t.timer.Elapsed(now),
	})
}

func (t *CTATracker) match(c browser.Click) string {
	if t.ids[c.Target.ID] {
		return c.Target.ID
	}
	for _, el := range c.Ancestry {
		if t.ids[el.ID] {
			return el.ID
		}
	}
	return ""
}
