package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testPage() (string, string) {
	return "https://shop.test/checkout.html", "/checkout.html"
}

func TestEmitter_StampsEnvelope(t *testing.T) {
	q := NewQueue()
	e := NewEmitter(q, fixedNow, testPage, nil)

	e.Emit("scroll_depth", Payload{"depth_percent": 50})

	require.Equal(t, 1, q.Len())
	env := q.Events()[0]
	assert.Equal(t, "scroll_depth", env.Name)
	assert.Equal(t, "2025-06-01T12:00:00.000Z", env.Timestamp)
	assert.Equal(t, "https://shop.test/checkout.html", env.PageURL)
	assert.Equal(t, "/checkout.html", env.PagePath)
	assert.Equal(t, 50, env.Payload["depth_percent"])
}

func TestEmitter_DropsReservedPayloadKeys(t *testing.T) {
	q := NewQueue()
	e := NewEmitter(q, fixedNow, testPage, nil)

	e.Emit("cart_active", Payload{
		"timestamp":  "spoofed",
		"page_url":   "spoofed",
		"cart_value": 42.5,
	})

	env := q.Events()[0]
	assert.Equal(t, "2025-06-01T12:00:00.000Z", env.Timestamp)
	assert.NotContains(t, env.Payload, "timestamp")
	assert.NotContains(t, env.Payload, "page_url")
	assert.Equal(t, 42.5, env.Payload["cart_value"])
}

func TestEmitter_LazySinkInitialization(t *testing.T) {
	e := NewEmitter(nil, fixedNow, testPage, nil)

	// Must not panic with an absent sink.
	e.Emit("page_view", nil)
	e.Emit("page_view", nil)
}

func TestEmitter_EmptyPayloadOmitted(t *testing.T) {
	q := NewQueue()
	e := NewEmitter(q, fixedNow, testPage, nil)

	e.Emit("page_view", nil)
	e.Emit("page_view", Payload{})

	for _, env := range q.Events() {
		assert.Nil(t, env.Payload)
	}
}
