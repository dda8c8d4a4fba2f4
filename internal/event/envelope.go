package event

import "time"

// Reserved envelope fields. Payload keys must never collide with these;
// Emitter drops colliding keys rather than letting a tracker overwrite them.
const (
	FieldName      = "event"
	FieldTimestamp = "timestamp"
	FieldPageURL   = "page_url"
	FieldPagePath  = "page_path"
)

// Payload carries tracker-specific fields for one envelope.
type Payload map[string]any

// Envelope is the canonical record pushed to the event sink.
//
// An envelope is created at the moment a tracker fires, appended to the
// sink immediately, and never mutated afterward. Name and Timestamp are
// always present; Timestamp is ISO-8601 (RFC 3339 with millisecond
// precision).
type Envelope struct {
	Name      string  `json:"event"`
	Timestamp string  `json:"timestamp"`
	PageURL   string  `json:"page_url"`
	PagePath  string  `json:"page_path"`
	Payload   Payload `json:"payload,omitempty"`
}

// Timestamp layout for envelopes. RFC 3339 with fixed millisecond width so
// canonical serialization is stable across replays with the same clock.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in the envelope timestamp layout, in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Sink is the append-only event queue the engine pushes envelopes onto.
//
// Append must not block and must not fail upward: implementations swallow
// their own errors. Consumption is external (tag manager, store, test
// capture) and out of the engine's contract.
type Sink interface {
	Append(Envelope)
}

// Queue is the in-memory sink: an unbounded ordered list of envelopes.
// It stands in for the host page's global event queue and is the default
// sink when none is injected (lazy initialization per the adapter
// contract).
type Queue struct {
	events []Envelope
}

// NewQueue creates an empty queue sink.
func NewQueue() *Queue {
	return &Queue{events: make([]Envelope, 0, 64)}
}

// Append adds one envelope to the end of the queue.
func (q *Queue) Append(e Envelope) {
	q.events = append(q.events, e)
}

// Events returns the envelopes appended so far, in order.
func (q *Queue) Events() []Envelope {
	return q.events
}

// Len returns the number of envelopes appended so far.
func (q *Queue) Len() int {
	return len(q.events)
}
