package track

import (
	"sort"
	"time"

	"github.com/lnnemml/pulse/internal/browser"
	"github.com/lnnemml/pulse/internal/event"
)

// DefaultDwellMilestones are the per-section dwell marks in seconds.
var DefaultDwellMilestones = []int{3, 10, 30}

// sectionVisibleRatio is the intersection ratio at which a section counts
// as visible.
const sectionVisibleRatio = 0.5

// sectionState is the per-section record: view bookkeeping plus a dwell
// watermark. total accumulates only when a visibility interval closes;
// open intervals are added on the fly for dwell sampling and the final
// summary.
type sectionState struct {
	firstSeen    time.Time
	lastSeen     time.Time
	total        time.Duration
	viewCount    int
	tracked      bool
	visibleSince time.Time // zero when not currently visible
	dwell        *Watermark
}

// SectionTracker watches page sections through intersection-observer
// signals: one section_view per section per page, dwell milestones while
// visible, and a per-section summary at page teardown.
type SectionTracker struct {
	emitter    *event.Emitter
	milestones []int
	sections   map[string]*sectionState
}

// NewSectionTracker creates a section tracker. milestones defaults to
// DefaultDwellMilestones.
func NewSectionTracker(emitter *event.Emitter, milestones []int) *SectionTracker {
	if len(milestones) == 0 {
		milestones = DefaultDwellMilestones
	}
	return &SectionTracker{
		emitter:    emitter,
		milestones: milestones,
		sections:   make(map[string]*sectionState),
	}
}

func (t *SectionTracker) state(id string) *sectionState {
	s, ok := t.sections[id]
	if !ok {
		s = &sectionState{dwell: NewWatermark(t.milestones)}
		t.sections[id] = s
	}
	return s
}

// OnIntersection handles one observer callback for a watched section.
func (t *SectionTracker) OnIntersection(sig browser.SectionVisibility, now time.Time) {
	s := t.state(sig.SectionID)

	visible := sig.Intersecting && sig.Ratio >= sectionVisibleRatio
	switch {
	case visible && s.visibleSince.IsZero():
		if s.firstSeen.IsZero() {
			s.firstSeen = now
		}
		s.visibleSince = now
		s.viewCount++
		if !s.tracked {
			s.tracked = true
			t.emitter.Emit("section_view", event.Payload{
				"section": sig.SectionID,
			})
		}
	case !visible && !s.visibleSince.IsZero():
		s.total += now.Sub(s.visibleSince)
		s.lastSeen = now
		s.visibleSince = time.Time{}
	}
}

// visibleFor is the section's accumulated visible time including the open
// interval, if any.
func (s *sectionState) visibleFor(now time.Time) time.Duration {
	total := s.total
	if !s.visibleSince.IsZero() {
		total += now.Sub(s.visibleSince)
	}
	return total
}

// OnTick samples dwell time for currently visible sections and emits
// newly passed milestones.
func (t *SectionTracker) OnTick(now time.Time) {
	for id, s := range t.sections {
		if s.visibleSince.IsZero() {
			continue
		}
		seconds := int(s.visibleFor(now) / time.Second)
		for _, mark := range s.dwell.Advance(seconds) {
			t.emitter.Emit("section_dwell", event.Payload{
				"section":       id,
				"dwell_seconds": mark,
			})
		}
	}
}

// OnPageHide emits one final summary per seen section, in section-id order
// for a deterministic stream.
func (t *SectionTracker) OnPageHide(now time.Time) {
	ids := make([]string, 0, len(t.sections))
	for id := range t.sections {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		s := t.sections[id]
		t.emitter.Emit("section_summary", event.Payload{
			"section":          id,
			"total_visible_ms": int(s.visibleFor(now) / time.Millisecond),
			"view_count":       s.viewCount,
		})
	}
}
