package track

import (
	"github.com/lnnemml/pulse/internal/event"
	"github.com/lnnemml/pulse/internal/page"
	"github.com/lnnemml/pulse/internal/storage"
	"github.com/lnnemml/pulse/internal/testutil"
)

// testRig wires a capture sink, manual clock, and resolver for tracker
// tests.
type testRig struct {
	sink     *testutil.CaptureSink
	clock    *testutil.ManualClock
	emitter  *event.Emitter
	resolver *page.Resolver
}

func newTestRig(location string, viewportWidth int) *testRig {
	sink := &testutil.CaptureSink{}
	clock := testutil.NewManualClock()
	scopes := storage.Scopes{Session: storage.NewMemory(), Durable: storage.NewMemory()}
	resolver := page.NewResolver(clock, scopes, location, "", viewportWidth, page.NewFixedGenerator("s-1"))
	emitter := event.NewEmitter(sink, clock.Now, func() (string, string) {
		return resolver.Location(), resolver.Path()
	}, nil)
	return &testRig{sink: sink, clock: clock, emitter: emitter, resolver: resolver}
}
