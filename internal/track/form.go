package track

import (
	"sort"
	"time"

	"github.com/lnnemml/pulse/internal/browser"
	"github.com/lnnemml/pulse/internal/event"
)

// DefaultMinFieldDwell is the minimum focus dwell for a blur to count as
// field completion.
const DefaultMinFieldDwell = 500 * time.Millisecond

// formState is the lifecycle record for one form. Created on first field
// focus, read once at page teardown for the abandonment path.
type formState struct {
	started     bool
	startTime   time.Time
	interacted  map[string]bool
	completed   map[string]bool
	errorCounts map[string]int
	submitted   bool
	abandoned   bool
	lastActive  string
	focusedAt   time.Time
}

// FormTracker runs the per-form lifecycle state machine:
// idle -> started (form_start) -> field_focus/field_complete/field_error
// -> submitted (form_submit), or exactly one form_abandon when the page
// goes away while started and not submitted.
type FormTracker struct {
	emitter  *event.Emitter
	minDwell time.Duration
	forms    map[string]*formState
}

// NewFormTracker creates a form tracker. minDwell defaults to
// DefaultMinFieldDwell when zero.
func NewFormTracker(emitter *event.Emitter, minDwell time.Duration) *FormTracker {
	if minDwell <= 0 {
		minDwell = DefaultMinFieldDwell
	}
	return &FormTracker{emitter: emitter, minDwell: minDwell, forms: make(map[string]*formState)}
}

func (t *FormTracker) form(id string, now time.Time) *formState {
	f, ok := t.forms[id]
	if !ok {
		f = &formState{
			interacted:  make(map[string]bool),
			completed:   make(map[string]bool),
			errorCounts: make(map[string]int),
		}
		t.forms[id] = f
	}
	return f
}

// OnFocusIn handles focus entering a tracked field.
func (t *FormTracker) OnFocusIn(sig browser.FocusIn, now time.Time) {
	f := t.form(sig.FormID, now)
	if !f.started {
		f.started = true
		f.startTime = now
		t.emitter.Emit("form_start", event.Payload{
			"form_id": sig.FormID,
			"field":   sig.Field.Name,
		})
	}
	f.interacted[sig.Field.Name] = true
	f.lastActive = sig.Field.Name
	f.focusedAt = now
	t.emitter.Emit("field_focus", event.Payload{
		"form_id": sig.FormID,
		"field":   sig.Field.Name,
	})
}

// OnFocusOut handles focus leaving a field: field_error on native
// validation failure, field_complete when the dwell met the minimum.
func (t *FormTracker) OnFocusOut(sig browser.FocusOut, now time.Time) {
	f, ok := t.forms[sig.FormID]
	if !ok || !f.started {
		return
	}
	dwell := now.Sub(f.focusedAt)

	if !sig.Valid {
		f.errorCounts[sig.Field.Name]++
		t.emitter.Emit("field_error", event.Payload{
			"form_id": sig.FormID,
			"field":   sig.Field.Name,
			"message": sig.ValidationMessage,
		})
		return
	}
	if dwell >= t.minDwell {
		f.completed[sig.Field.Name] = true
		t.emitter.Emit("field_complete", event.Payload{
			"form_id":  sig.FormID,
			"field":    sig.Field.Name,
			"dwell_ms": int(dwell / time.Millisecond),
		})
	}
}

// OnSubmit transitions the form to submitted and suppresses the
// abandonment path.
func (t *FormTracker) OnSubmit(sig browser.Submit, now time.Time) {
	f := t.form(sig.FormID, now)
	f.submitted = true
	t.emitter.Emit("form_submit", event.Payload{
		"form_id":          sig.FormID,
		"valid":            sig.Valid,
		"fields_completed": len(f.completed),
		"elapsed_seconds":  elapsedSeconds(f.startTime, now),
	})
}

// OnPageHide emits exactly one form_abandon per started, unsubmitted
// form, in form-id order. Safe to call more than once (hidden then
// unload).
func (t *FormTracker) OnPageHide(now time.Time) {
	ids := make([]string, 0, len(t.forms))
	for id := range t.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		f := t.forms[id]
		if !f.started || f.submitted || f.abandoned {
			continue
		}
		f.abandoned = true
		t.emitter.Emit("form_abandon", event.Payload{
			"form_id":           id,
			"last_active_field": f.lastActive,
			"fields_interacted": len(f.interacted),
			"fields_completed":  len(f.completed),
			"error_count":       totalErrors(f.errorCounts),
			"elapsed_seconds":   elapsedSeconds(f.startTime, now),
		})
	}
}

func totalErrors(counts map[string]int) int {
	var n int
	for _, c := range counts {
		n += c
	}
	return n
}

func elapsedSeconds(from, to time.Time) int {
	if from.IsZero() {
		return 0
	}
	return int(to.Sub(from) / time.Second)
}
