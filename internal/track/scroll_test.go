package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnnemml/pulse/internal/browser"
)

func TestScrollPercent(t *testing.T) {
	tests := []struct {
		name string
		s    browser.Scroll
		want int
	}{
		{"top", browser.Scroll{Top: 0, DocumentHeight: 3000, ViewportHeight: 800}, 0},
		{"middle", browser.Scroll{Top: 1100, DocumentHeight: 3000, ViewportHeight: 800}, 50},
		{"bottom", browser.Scroll{Top: 2200, DocumentHeight: 3000, ViewportHeight: 800}, 100},
		{"short page", browser.Scroll{Top: 0, DocumentHeight: 500, ViewportHeight: 800}, 0},
		{"exact viewport", browser.Scroll{Top: 100, DocumentHeight: 800, ViewportHeight: 800}, 0},
		{"overscroll", browser.Scroll{Top: 2500, DocumentHeight: 3000, ViewportHeight: 800}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrollPercent(tt.s))
		})
	}
}

func TestScrollTracker_EmitsEachDepthOnce(t *testing.T) {
	rig := newTestRig("https://shop.test/product_isrib-a15.html", 1440)
	tr := NewScrollTracker(rig.emitter, rig.resolver, nil)

	scroll := func(top float64) {
		tr.OnScroll(browser.Scroll{Top: top, DocumentHeight: 3000, ViewportHeight: 800})
	}

	scroll(550)  // 25%
	scroll(550)  // still 25%, nothing new
	scroll(2200) // 100%: 50, 75, 90, 100 fire in one tick

	events := rig.sink.Named("scroll_depth")
	require.Len(t, events, 5)

	var depths []int
	for _, env := range events {
		depths = append(depths, env.Payload["depth_percent"].(int))
	}
	assert.Equal(t, []int{25, 50, 75, 90, 100}, depths, "ascending, no repeats")

	last := events[4].Payload
	assert.Equal(t, 100, last["max_depth"])
	assert.Equal(t, "product", last["page_type"])
	assert.Equal(t, "desktop", last["device_type"])
}
