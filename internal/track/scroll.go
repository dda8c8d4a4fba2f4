package track

import (
	"math"

	"github.com/lnnemml/pulse/internal/browser"
	"github.com/lnnemml/pulse/internal/event"
	"github.com/lnnemml/pulse/internal/page"
)

// DefaultScrollThresholds are the scroll-depth percentages tracked when
// the config does not override them.
var DefaultScrollThresholds = []int{25, 50, 75, 90, 100}

// ScrollTracker emits one scroll_depth event per configured depth
// percentage per page lifetime.
type ScrollTracker struct {
	emitter  *event.Emitter
	resolver *page.Resolver
	wm       *Watermark
}

// NewScrollTracker creates a scroll tracker with the given thresholds.
func NewScrollTracker(emitter *event.Emitter, resolver *page.Resolver, thresholds []int) *ScrollTracker {
	if len(thresholds) == 0 {
		thresholds = DefaultScrollThresholds
	}
	return &ScrollTracker{emitter: emitter, resolver: resolver, wm: NewWatermark(thresholds)}
}

// ScrollPercent converts raw scroll measurements to a 0-100 depth
// percentage. A non-positive scrollable height (page shorter than the
// viewport) clamps to 0.
func ScrollPercent(s browser.Scroll) int {
	denom := s.DocumentHeight - s.ViewportHeight
	if denom <= 0 {
		return 0
	}
	pct := int(math.Round(s.Top / denom * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// OnScroll advances the watermark and emits newly crossed depths in
// ascending order.
func (t *ScrollTracker) OnScroll(s browser.Scroll) {
	for _, depth := range t.wm.Advance(ScrollPercent(s)) {
		t.emitter.Emit("scroll_depth", event.Payload{
			"depth_percent": depth,
			"max_depth":     t.wm.Max(),
			"page_type":     string(t.resolver.ClassifyPage()),
			"device_type":   string(t.resolver.ClassifyDevice()),
		})
	}
}

// MaxDepth returns the deepest scroll percentage seen so far. Used by the
// CTA tracker and the exit-intent detector to annotate their events.
func (t *ScrollTracker) MaxDepth() int { return t.wm.Max() }
