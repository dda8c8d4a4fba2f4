package testutil

import "github.com/lnnemml/pulse/internal/event"

// CaptureSink records appended envelopes for assertion.
type CaptureSink struct {
	Envelopes []event.Envelope
}

// Append stores the envelope.
func (s *CaptureSink) Append(e event.Envelope) {
	s.Envelopes = append(s.Envelopes, e)
}

// Named returns the captured envelopes with the given name, in order.
func (s *CaptureSink) Named(name string) []event.Envelope {
	var out []event.Envelope
	for _, e := range s.Envelopes {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// CountNamed returns how many captured envelopes carry the given name.
func (s *CaptureSink) CountNamed(name string) int {
	return len(s.Named(name))
}

// Names returns the captured event names in emission order.
func (s *CaptureSink) Names() []string {
	names := make([]string, len(s.Envelopes))
	for i, e := range s.Envelopes {
		names[i] = e.Name
	}
	return names
}
