package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"zebra": 1,
		"alpha": 2,
		"mango": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mango":3,"zebra":1}`, string(out))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	out, err := MarshalCanonical("a < b & c > d")
	require.NoError(t, err)
	assert.Equal(t, `"a < b & c > d"`, string(out))
}

func TestMarshalCanonical_IntegralFloats(t *testing.T) {
	intOut, err := MarshalCanonical(50)
	require.NoError(t, err)
	floatOut, err := MarshalCanonical(50.0)
	require.NoError(t, err)
	assert.Equal(t, string(intOut), string(floatOut))

	fracOut, err := MarshalCanonical(42.5)
	require.NoError(t, err)
	assert.Equal(t, "42.5", string(fracOut))
}

func TestMarshalEnvelope_Deterministic(t *testing.T) {
	env := Envelope{
		Name:      "cart_idle",
		Timestamp: "2025-06-01T12:00:30.000Z",
		PageURL:   "https://shop.test/",
		PagePath:  "/",
		Payload:   Payload{"idle_time_seconds": 30, "abandonment_stage": "browsing"},
	}

	a, err := MarshalEnvelope(env)
	require.NoError(t, err)
	b, err := MarshalEnvelope(env)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestHash_DiffersByPayload(t *testing.T) {
	base := Envelope{
		Name:      "scroll_depth",
		Timestamp: "2025-06-01T12:00:00.000Z",
		PageURL:   "https://shop.test/",
		PagePath:  "/",
		Payload:   Payload{"depth_percent": 25},
	}
	other := base
	other.Payload = Payload{"depth_percent": 50}

	h1, err := Hash(base)
	require.NoError(t, err)
	h2, err := Hash(other)
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, h2)
}
