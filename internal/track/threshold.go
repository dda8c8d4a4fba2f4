// Package track implements the per-page trackers: threshold watermarks
// (scroll depth, time on page, section visibility/dwell) and interaction
// classifiers (dead clicks, click rage, form lifecycle, CTA tracking).
//
// Every tracker is a small synchronous state machine fed by normalized
// browser signals. All state is page-lifetime scoped and owned by the
// engine's page session arena; nothing here installs real listeners or
// timers.
package track

// Watermark tracks a monotonic metric against a fixed ascending threshold
// list. Once a threshold is crossed it is never re-fired within the page
// lifetime; the set resets only with a full page load (a new Watermark).
type Watermark struct {
	thresholds []int
	fired      map[int]bool
	max        int
}

// NewWatermark creates a watermark for the given ascending thresholds.
func NewWatermark(thresholds []int) *Watermark {
	return &Watermark{
		thresholds: thresholds,
		fired:      make(map[int]bool, len(thresholds)),
	}
}

// Advance records a new metric observation and returns the thresholds
// newly crossed, in ascending order. A metric jump can cross several
// thresholds in one call; each is returned exactly once over the
// watermark's lifetime.
func (w *Watermark) Advance(value int) []int {
	if value > w.max {
		w.max = value
	}
	var crossed []int
	for _, t := range w.thresholds {
		if t > value {
			break
		}
		if !w.fired[t] {
			w.fired[t] = true
			crossed = append(crossed, t)
		}
	}
	return crossed
}

// Max returns the running maximum observed value.
func (w *Watermark) Max() int { return w.max }

// Fired reports whether threshold t has been crossed.
func (w *Watermark) Fired(t int) bool { return w.fired[t] }
