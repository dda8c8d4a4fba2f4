package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnnemml/pulse/internal/browser"
)

func newCTARig(t *testing.T) (*testRig, *CTATracker) {
	t.Helper()
	rig := newTestRig("https://shop.test/", 1440)
	scroll := NewScrollTracker(rig.emitter, rig.resolver, nil)
	timer := NewTimeTracker(rig.emitter, rig.resolver, rig.clock.Now(), nil)
	return rig, NewCTATracker(rig.emitter, scroll, timer, []string{"buy-now", "hero-cta"})
}

func TestCTATracker_VisibleOncePerElement(t *testing.T) {
	rig, tr := newCTARig(t)

	see := browser.SectionVisibility{SectionID: "buy-now", Ratio: 0.7, Intersecting: true}
	tr.OnIntersection(see)
	tr.OnIntersection(browser.SectionVisibility{SectionID: "buy-now", Ratio: 0, Intersecting: false})
	tr.OnIntersection(see)

	assert.Equal(t, 1, rig.sink.CountNamed("cta_visible"))

	tr.OnIntersection(browser.SectionVisibility{SectionID: "hero-cta", Ratio: 0.9, Intersecting: true})
	assert.Equal(t, 2, rig.sink.CountNamed("cta_visible"), "each element gets its own first-visible event")
}

func TestCTATracker_IgnoresUnwatchedAndLowRatio(t *testing.T) {
	rig, tr := newCTARig(t)

	tr.OnIntersection(browser.SectionVisibility{SectionID: "footer", Ratio: 1, Intersecting: true})
	tr.OnIntersection(browser.SectionVisibility{SectionID: "buy-now", Ratio: 0.2, Intersecting: true})

	assert.Empty(t, rig.sink.Envelopes)
}

func TestCTATracker_ClickNotDeduplicated(t *testing.T) {
	rig, tr := newCTARig(t)

	rig.clock.Advance(42 * time.Second)
	click := browser.Click{X: 10, Y: 10, Target: browser.Element{Tag: "button", ID: "buy-now"}}
	tr.OnClick(click, rig.clock.Now())
	tr.OnClick(click, rig.clock.Now())

	clicks := rig.sink.Named("cta_click")
	require.Len(t, clicks, 2)
	assert.Equal(t, "buy-now", clicks[0].Payload["cta_id"])
	assert.Equal(t, 42, clicks[0].Payload["seconds_on_page"])
}

func TestCTATracker_ClickMatchesAncestor(t *testing.T) {
	rig, tr := newCTARig(t)

	tr.OnClick(browser.Click{
		Target:   browser.Element{Tag: "span", Classes: []string{"label"}},
		Ancestry: []browser.Element{{Tag: "button", ID: "hero-cta"}},
	}, rig.clock.Now())

	clicks := rig.sink.Named("cta_click")
	require.Len(t, clicks, 1)
	assert.Equal(t, "hero-cta", clicks[0].Payload["cta_id"])
}
