package storage

import "strconv"

// CartContentsKey is the storage key holding cart contents. The key is
// owned by the external cart/checkout subsystem; this engine only reads
// it. Cross-tab writers are tolerated by re-reading on change.
const CartContentsKey = "cart"

// CartItem is one line of the persisted cart snapshot, in the format the
// cart subsystem writes.
type CartItem struct {
	SKU     string  `json:"sku"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Count   int     `json:"count"`
	Grams   int     `json:"grams"`
	Display string  `json:"display"`
}

// Identity is the item key used for diffing: SKU plus weight, since the
// same SKU in two weights sells as two distinct lines.
func (i CartItem) Identity() string {
	return i.SKU + "/" + strconv.Itoa(i.Grams)
}

// CartReader supplies the latest known cart snapshot. Implementations must
// treat malformed persisted JSON as an empty cart.
type CartReader interface {
	ReadCart() []CartItem
}

// KVCartReader reads the cart snapshot from a durable KV scope.
type KVCartReader struct {
	Durable KV
}

// ReadCart decodes the persisted cart contents. Absent or corrupted data
// reads as empty.
func (r KVCartReader) ReadCart() []CartItem {
	var items []CartItem
	if !GetJSON(r.Durable, CartContentsKey, &items) {
		return nil
	}
	return items
}

// CartValue sums price*count across items.
func CartValue(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Count)
	}
	return total
}

// CartCount sums item counts across lines.
func CartCount(items []CartItem) int {
	var n int
	for _, it := range items {
		n += it.Count
	}
	return n
}
