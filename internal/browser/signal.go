// Package browser defines the normalized host-runtime surface the tracking
// engine consumes: browser events reduced to plain signal structs, DOM
// elements reduced to capability descriptors, and wall-clock time behind a
// Clock interface.
//
// Nothing in this package touches a real DOM. Production adapters extract
// these values from live events; tests and replays construct them directly,
// which is what makes every tracker deterministic.
package browser

import "time"

// Kind identifies a signal variant.
type Kind int

const (
	// KindTick is the 1-second sampling tick (timer callback).
	KindTick Kind = iota + 1
	// KindScroll is a scroll event coalesced to animation-frame granularity.
	KindScroll
	// KindClick is a pointer click, capture phase.
	KindClick
	// KindPointerLeave is a mouseout whose related target left the window.
	KindPointerLeave
	// KindVisibility is a document visibilitychange.
	KindVisibility
	// KindFocusIn is a focusin on a tracked form field.
	KindFocusIn
	// KindFocusOut is a focusout on a tracked form field.
	KindFocusOut
	// KindSubmit is a form submit.
	KindSubmit
	// KindSectionVisibility is an intersection-observer callback for a
	// watched page section or call-to-action element.
	KindSectionVisibility
	// KindStorageChange is a cross-tab storage event for a watched key.
	KindStorageChange
	// KindNavigate is a client-side navigation (popstate).
	KindNavigate
	// KindPageHide is beforeunload/pagehide: the page is being destroyed.
	KindPageHide
	// KindPerformanceEntry is a performance-observer entry (slow resource).
	KindPerformanceEntry
)

// Signal is one normalized browser event. The engine dispatches signals to
// trackers synchronously in arrival order; time is never read from the
// signal itself but from the session clock at dispatch.
type Signal interface {
	Kind() Kind
}

// Tick is the periodic sampling tick.
type Tick struct{}

func (Tick) Kind() Kind { return KindTick }

// Scroll carries raw scroll measurements; trackers derive the depth
// percentage themselves.
type Scroll struct {
	Top            float64 // scrollTop
	DocumentHeight float64 // scrollHeight
	ViewportHeight float64 // innerHeight
}

func (Scroll) Kind() Kind { return KindScroll }

// Click is a pointer click with the target element and its ancestry.
// Ancestry[0] is the target's parent; deeper indexes walk toward the root.
type Click struct {
	X, Y     int
	Target   Element
	Ancestry []Element
}

func (Click) Kind() Kind { return KindClick }

// PointerLeave is a mouseout with no related target (the pointer truly left
// the window). Y is the client Y at the moment of leaving.
type PointerLeave struct {
	X, Y int
}

func (PointerLeave) Kind() Kind { return KindPointerLeave }

// Visibility reports the document's new visibility state.
type Visibility struct {
	Hidden bool
}

func (Visibility) Kind() Kind { return KindVisibility }

// FocusIn is focus entering a tracked form field.
type FocusIn struct {
	FormID string
	Field  Field
}

func (FocusIn) Kind() Kind { return KindFocusIn }

// FocusOut is focus leaving a tracked form field, with the field's native
// validation verdict at blur time.
type FocusOut struct {
	FormID            string
	Field             Field
	Valid             bool
	ValidationMessage string
}

func (FocusOut) Kind() Kind { return KindFocusOut }

// Submit is a form submission attempt.
type Submit struct {
	FormID string
	Valid  bool
}

func (Submit) Kind() Kind { return KindSubmit }

// SectionVisibility is an intersection-observer callback for one watched
// element (page section or CTA).
type SectionVisibility struct {
	SectionID    string
	Ratio        float64
	Intersecting bool
}

func (SectionVisibility) Kind() Kind { return KindSectionVisibility }

// StorageChange is a storage event observed for a watched key in another
// tab. The engine re-reads the key rather than trusting carried values.
type StorageChange struct {
	Key string
}

func (StorageChange) Kind() Kind { return KindStorageChange }

// Navigate is a client-side navigation to a new URL on the same page
// lifetime (history.pushState / popstate).
type Navigate struct {
	URL string
}

func (Navigate) Kind() Kind { return KindNavigate }

// PageHide is the page teardown signal (beforeunload or pagehide,
// whichever fires first; the engine deduplicates).
type PageHide struct{}

func (PageHide) Kind() Kind { return KindPageHide }

// PerformanceEntry is a performance-observer entry. Only slow resources are
// forwarded; engines without a performance observer never see this signal.
type PerformanceEntry struct {
	Name     string
	Duration time.Duration
}

func (PerformanceEntry) Kind() Kind { return KindPerformanceEntry }
