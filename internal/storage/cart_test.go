package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVCartReader(t *testing.T) {
	durable := NewMemory()
	reader := KVCartReader{Durable: durable}

	assert.Empty(t, reader.ReadCart(), "absent cart reads as empty")

	SetJSON(durable, CartContentsKey, []CartItem{
		{SKU: "isrib-a15", Name: "ISRIB A15", Price: 25, Count: 2, Grams: 1, Display: "1g"},
	})
	items := reader.ReadCart()
	require.Len(t, items, 1)
	assert.Equal(t, "isrib-a15", items[0].SKU)

	require.NoError(t, durable.Set(CartContentsKey, "not json"))
	assert.Empty(t, reader.ReadCart(), "corrupted cart reads as empty")
}

func TestCartValueAndCount(t *testing.T) {
	items := []CartItem{
		{SKU: "a", Price: 25, Count: 2},
		{SKU: "b", Price: 10, Count: 1},
	}
	assert.Equal(t, 60.0, CartValue(items))
	assert.Equal(t, 3, CartCount(items))
	assert.Equal(t, 0.0, CartValue(nil))
}

func TestCartItemIdentity(t *testing.T) {
	a := CartItem{SKU: "isrib-a15", Grams: 1}
	b := CartItem{SKU: "isrib-a15", Grams: 5}
	assert.NotEqual(t, a.Identity(), b.Identity(), "same SKU in two weights is two lines")
}
