package harness

import (
	"fmt"
	"strings"

	"github.com/lnnemml/pulse/internal/event"
)

// AssertionError reports a failed stream assertion with the full stream
// attached for debugging.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Stream   []event.Envelope
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nstream:\n")
	for i, env := range e.Stream {
		fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, env.Name, env.Payload)
	}
	return buf.String()
}

func check(stream []event.Envelope, a Assertion) error {
	switch a.Type {
	case "stream_contains":
		return checkContains(stream, a)
	case "stream_order":
		return checkOrder(stream, a)
	case "stream_count":
		return checkCount(stream, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// checkContains looks for an event with the given name whose payload
// matches the assertion payload (subset semantics: only asserted keys are
// compared).
func checkContains(stream []event.Envelope, a Assertion) error {
	for _, env := range stream {
		if env.Name == a.Event && matchPayload(env.Payload, a.Payload) {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s with payload %v", a.Event, a.Payload),
		Actual:   "no matching event",
		Stream:   stream,
	}
}

// checkOrder verifies the named events appear in the given relative order
// (other events may interleave).
func checkOrder(stream []event.Envelope, a Assertion) error {
	idx := 0
	for _, env := range stream {
		if idx < len(a.Events) && env.Name == a.Events[idx] {
			idx++
		}
	}
	if idx < len(a.Events) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("order %v", a.Events),
			Actual:   fmt.Sprintf("stopped after %d of %d", idx, len(a.Events)),
			Stream:   stream,
		}
	}
	return nil
}

// checkCount verifies the named event appears exactly Count times.
func checkCount(stream []event.Envelope, a Assertion) error {
	var n int
	for _, env := range stream {
		if env.Name == a.Event {
			n++
		}
	}
	if n != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s x%d", a.Event, a.Count),
			Actual:   fmt.Sprintf("%s x%d", a.Event, n),
			Stream:   stream,
		}
	}
	return nil
}

// matchPayload is a subset match with YAML-vs-Go numeric tolerance: ints
// compare equal to their float values.
func matchPayload(got event.Payload, want map[string]any) bool {
	for k, wv := range want {
		gv, ok := got[k]
		if !ok || !looseEqual(gv, wv) {
			return false
		}
	}
	return true
}

func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
