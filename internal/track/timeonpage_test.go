package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeTracker_MarksFireOnce(t *testing.T) {
	rig := newTestRig("https://shop.test/", 1440)
	tr := NewTimeTracker(rig.emitter, rig.resolver, rig.clock.Now(), nil)

	for i := 0; i < 35; i++ {
		rig.clock.Advance(time.Second)
		tr.OnTick(rig.clock.Now())
	}

	events := rig.sink.Named("time_on_page")
	require.Len(t, events, 2)
	assert.Equal(t, 10, events[0].Payload["seconds"])
	assert.Equal(t, 30, events[1].Payload["seconds"])
}

func TestTimeTracker_PausesWhileHidden(t *testing.T) {
	rig := newTestRig("https://shop.test/", 1440)
	tr := NewTimeTracker(rig.emitter, rig.resolver, rig.clock.Now(), nil)

	tr.OnVisibility(true)
	rig.clock.Advance(15 * time.Second)
	tr.OnTick(rig.clock.Now())
	assert.Empty(t, rig.sink.Envelopes, "no marks fire while hidden")

	// Wall-clock semantics: hidden time is not subtracted, so the 10s
	// mark fires on the first visible tick.
	tr.OnVisibility(false)
	rig.clock.Advance(time.Second)
	tr.OnTick(rig.clock.Now())

	events := rig.sink.Named("time_on_page")
	require.Len(t, events, 1)
	assert.Equal(t, 10, events[0].Payload["seconds"])
}

func TestTimeTracker_Elapsed(t *testing.T) {
	rig := newTestRig("https://shop.test/", 1440)
	start := rig.clock.Now()
	tr := NewTimeTracker(rig.emitter, rig.resolver, start, nil)

	rig.clock.Advance(90 * time.Second)
	assert.Equal(t, 90, tr.Elapsed(rig.clock.Now()))
}
