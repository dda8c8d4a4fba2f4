package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTrip(t *testing.T) {
	kv := NewMemory()

	_, ok := kv.Get("missing")
	assert.False(t, ok)

	require.NoError(t, kv.Set("k", "v"))
	got, ok := kv.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	require.NoError(t, kv.Delete("k"))
	_, ok = kv.Get("k")
	assert.False(t, ok)
}

func TestUnavailable_FailsEverything(t *testing.T) {
	kv := Unavailable{}

	_, ok := kv.Get("k")
	assert.False(t, ok)
	assert.ErrorIs(t, kv.Set("k", "v"), ErrUnavailable)
	assert.ErrorIs(t, kv.Delete("k"), ErrUnavailable)
}

func TestGetJSON_MalformedReadsAsAbsent(t *testing.T) {
	kv := NewMemory()
	require.NoError(t, kv.Set("cart", `{"broken": [`))

	var items []CartItem
	assert.False(t, GetJSON(kv, "cart", &items))
	assert.Empty(t, items)
}

func TestSetJSON_SwallowsStorageFailure(t *testing.T) {
	// Must not panic or surface the error.
	SetJSON(Unavailable{}, "k", map[string]int{"a": 1})
	Put(Unavailable{}, "k", "v")
	Drop(Unavailable{}, "k")
}
