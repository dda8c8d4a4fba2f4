package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnnemml/pulse/internal/browser"
)

func TestSectionTracker_ViewFiresOncePerSection(t *testing.T) {
	rig := newTestRig("https://shop.test/", 1440)
	tr := NewSectionTracker(rig.emitter, nil)

	show := func(id string) {
		tr.OnIntersection(browser.SectionVisibility{SectionID: id, Ratio: 0.8, Intersecting: true}, rig.clock.Now())
	}
	hide := func(id string) {
		tr.OnIntersection(browser.SectionVisibility{SectionID: id, Ratio: 0, Intersecting: false}, rig.clock.Now())
	}

	show("hero")
	hide("hero")
	show("hero") // re-entry: view count grows, no second event
	show("benefits")

	assert.Equal(t, 1, rig.sink.CountNamed("section_view"))
	views := rig.sink.Named("section_view")
	assert.Equal(t, "hero", views[0].Payload["section"])

	assert.Equal(t, 2, len(rig.sink.Envelopes))
}

func TestSectionTracker_BelowRatioDoesNotCount(t *testing.T) {
	rig := newTestRig("https://shop.test/", 1440)
	tr := NewSectionTracker(rig.emitter, nil)

	tr.OnIntersection(browser.SectionVisibility{SectionID: "hero", Ratio: 0.3, Intersecting: true}, rig.clock.Now())
	assert.Empty(t, rig.sink.Envelopes)
}

func TestSectionTracker_DwellMilestones(t *testing.T) {
	rig := newTestRig("https://shop.test/", 1440)
	tr := NewSectionTracker(rig.emitter, nil)

	tr.OnIntersection(browser.SectionVisibility{SectionID: "hero", Ratio: 1, Intersecting: true}, rig.clock.Now())

	for i := 0; i < 12; i++ {
		rig.clock.Advance(time.Second)
		tr.OnTick(rig.clock.Now())
	}

	dwells := rig.sink.Named("section_dwell")
	require.Len(t, dwells, 2)
	assert.Equal(t, 3, dwells[0].Payload["dwell_seconds"])
	assert.Equal(t, 10, dwells[1].Payload["dwell_seconds"])
}

func TestSectionTracker_DwellAccumulatesAcrossIntervals(t *testing.T) {
	rig := newTestRig("https://shop.test/", 1440)
	tr := NewSectionTracker(rig.emitter, nil)

	// 2 seconds visible, hidden for a while, then 2 more seconds: the 3s
	// milestone fires during the second interval.
	tr.OnIntersection(browser.SectionVisibility{SectionID: "hero", Ratio: 1, Intersecting: true}, rig.clock.Now())
	rig.clock.Advance(2 * time.Second)
	tr.OnIntersection(browser.SectionVisibility{SectionID: "hero", Ratio: 0, Intersecting: false}, rig.clock.Now())

	rig.clock.Advance(30 * time.Second)
	tr.OnTick(rig.clock.Now())
	assert.Empty(t, rig.sink.Named("section_dwell"), "hidden time does not accumulate")

	tr.OnIntersection(browser.SectionVisibility{SectionID: "hero", Ratio: 1, Intersecting: true}, rig.clock.Now())
	rig.clock.Advance(2 * time.Second)
	tr.OnTick(rig.clock.Now())

	dwells := rig.sink.Named("section_dwell")
	require.Len(t, dwells, 1)
	assert.Equal(t, 3, dwells[0].Payload["dwell_seconds"])
}

func TestSectionTracker_SummaryOnPageHide(t *testing.T) {
	rig := newTestRig("https://shop.test/", 1440)
	tr := NewSectionTracker(rig.emitter, nil)

	tr.OnIntersection(browser.SectionVisibility{SectionID: "hero", Ratio: 1, Intersecting: true}, rig.clock.Now())
	rig.clock.Advance(1500 * time.Millisecond)
	tr.OnIntersection(browser.SectionVisibility{SectionID: "hero", Ratio: 0, Intersecting: false}, rig.clock.Now())

	tr.OnIntersection(browser.SectionVisibility{SectionID: "benefits", Ratio: 1, Intersecting: true}, rig.clock.Now())
	rig.clock.Advance(500 * time.Millisecond)

	tr.OnPageHide(rig.clock.Now())

	summaries := rig.sink.Named("section_summary")
	require.Len(t, summaries, 2)

	// Summaries come out in section-id order.
	assert.Equal(t, "benefits", summaries[0].Payload["section"])
	assert.Equal(t, 500, summaries[0].Payload["total_visible_ms"], "open interval counts in the summary")
	assert.Equal(t, "hero", summaries[1].Payload["section"])
	assert.Equal(t, 1500, summaries[1].Payload["total_visible_ms"])
	assert.Equal(t, 1, summaries[1].Payload["view_count"])
}
