package event

import (
	"log/slog"
	"time"
)

// Emitter is the event sink adapter. It stamps every envelope with the
// current timestamp and page context and appends it to the shared sink.
//
// Emit never fails upward: a missing sink is replaced by a lazily created
// in-memory Queue, and payload keys colliding with reserved fields are
// dropped (logged at Debug) instead of corrupting the envelope.
type Emitter struct {
	sink   Sink
	now    func() time.Time
	page   func() (url, path string)
	logger *slog.Logger
}

// NewEmitter creates an emitter writing to sink. now supplies wall-clock
// time; page supplies the current page URL and path, evaluated fresh on
// every emit to tolerate client-side navigation.
func NewEmitter(sink Sink, now func() time.Time, page func() (url, path string), logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{sink: sink, now: now, page: page, logger: logger}
}

// Emit appends one envelope named name with the given payload.
func (e *Emitter) Emit(name string, payload Payload) {
	if e.sink == nil {
		e.sink = NewQueue()
	}

	url, path := e.page()
	env := Envelope{
		Name:      name,
		Timestamp: FormatTimestamp(e.now()),
		PageURL:   url,
		PagePath:  path,
	}

	if len(payload) > 0 {
		env.Payload = make(Payload, len(payload))
		for k, v := range payload {
			switch k {
			case FieldName, FieldTimestamp, FieldPageURL, FieldPagePath:
				e.logger.Debug("dropping reserved payload key", "event", name, "key", k)
			default:
				env.Payload[k] = v
			}
		}
	}

	e.sink.Append(env)
}
