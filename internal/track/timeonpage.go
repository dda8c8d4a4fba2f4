package track

import (
	"time"

	"github.com/lnnemml/pulse/internal/event"
	"github.com/lnnemml/pulse/internal/page"
)

// DefaultTimeThresholds are the time-on-page marks in seconds.
var DefaultTimeThresholds = []int{10, 30, 60, 120, 300}

// TimeTracker emits one time_on_page event per configured elapsed-seconds
// mark.
//
// Semantics: elapsed time is wall-clock since page load. The sampling tick
// is suppressed while the page is hidden, so no mark can fire in the
// background, but hidden time is not subtracted; a mark passed while
// hidden fires on the first visible tick after.
type TimeTracker struct {
	emitter  *event.Emitter
	resolver *page.Resolver
	wm       *Watermark
	loadedAt time.Time
	hidden   bool
}

// NewTimeTracker creates a time tracker anchored at loadedAt.
func NewTimeTracker(emitter *event.Emitter, resolver *page.Resolver, loadedAt time.Time, thresholds []int) *TimeTracker {
	if len(thresholds) == 0 {
		thresholds = DefaultTimeThresholds
	}
	return &TimeTracker{emitter: emitter, resolver: resolver, wm: NewWatermark(thresholds), loadedAt: loadedAt}
}

// OnVisibility pauses and resumes the sampling tick.
func (t *TimeTracker) OnVisibility(hidden bool) {
	t.hidden = hidden
}

// Elapsed returns whole wall-clock seconds since page load.
func (t *TimeTracker) Elapsed(now time.Time) int {
	return int(now.Sub(t.loadedAt) / time.Second)
}

// OnTick samples elapsed time and emits newly passed marks in ascending
// order. No-op while hidden.
func (t *TimeTracker) OnTick(now time.Time) {
	if t.hidden {
		return
	}
	for _, seconds := range t.wm.Advance(t.Elapsed(now)) {
		t.emitter.Emit("time_on_page", event.Payload{
			"seconds":     seconds,
			"page_type":   string(t.resolver.ClassifyPage()),
			"device_type": string(t.resolver.ClassifyDevice()),
		})
	}
}
