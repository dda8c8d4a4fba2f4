// Package cart implements the cart session state machine: activation,
// checkout entry, idle-interval tracking, diff-based content change
// detection, abandonment, and the purchase-completion reset.
package cart

import (
	"sort"
	"time"

	"github.com/lnnemml/pulse/internal/event"
	"github.com/lnnemml/pulse/internal/page"
	"github.com/lnnemml/pulse/internal/storage"
)

// DefaultIdleIntervals are the idle marks in seconds, measured from the
// moment the cart was first seen non-empty.
var DefaultIdleIntervals = []int{30, 60, 120, 300, 600}

// IdlePollPeriod is the cadence of the idle check.
const IdlePollPeriod = 30 * time.Second

// Abandonment stage labels.
const (
	StageBrowsing    = "browsing"
	StageProductView = "product_view"
	StageCheckout    = "checkout"
)

// sessionState is the session-scoped persisted record. CheckoutStarted is
// monotonic within the session; the whole record is cleared on purchase
// completion.
type sessionState struct {
	CartFirstSeen   int64 `json:"cart_first_seen"` // epoch ms, 0 = never
	CheckoutStarted bool  `json:"checkout_started"`
	TrackedIdle     []int `json:"tracked_idle"`
}

func (s *sessionState) idleTracked(interval int) bool {
	for _, t := range s.TrackedIdle {
		if t == interval {
			return true
		}
	}
	return false
}

// Machine is the cart session state machine. It only reads cart contents
// (owned by the external checkout subsystem) and owns the session-scoped
// cart-session record.
//
// Change detection is diff-based over the oldest-known vs newest-known
// snapshot per sync: intermediate mutations between two syncs are
// invisible. Accepted limitation.
type Machine struct {
	emitter   *event.Emitter
	resolver  *page.Resolver
	reader    storage.CartReader
	scopes    storage.Scopes
	intervals []int

	state    sessionState
	snapshot []storage.CartItem
}

// NewMachine creates the machine, loading the persisted session record and
// taking the initial cart snapshot. intervals defaults to
// DefaultIdleIntervals.
func NewMachine(emitter *event.Emitter, resolver *page.Resolver, reader storage.CartReader, scopes storage.Scopes, intervals []int) *Machine {
	if len(intervals) == 0 {
		intervals = append([]int(nil), DefaultIdleIntervals...)
	}
	sort.Ints(intervals)

	m := &Machine{
		emitter:   emitter,
		resolver:  resolver,
		reader:    reader,
		scopes:    scopes,
		intervals: intervals,
	}
	storage.GetJSON(scopes.Session, storage.KeyCartSession, &m.state)
	m.snapshot = reader.ReadCart()
	return m
}

// Value returns the latest known cart value.
func (m *Machine) Value() float64 { return storage.CartValue(m.snapshot) }

// ItemCount returns the latest known item count.
func (m *Machine) ItemCount() int { return storage.CartCount(m.snapshot) }

// CheckoutStarted reports whether checkout was entered this session.
func (m *Machine) CheckoutStarted() bool { return m.state.CheckoutStarted }

// Stage derives the abandonment stage from checkout entry and the current
// page classification.
func (m *Machine) Stage() string {
	switch {
	case m.state.CheckoutStarted:
		return StageCheckout
	case m.resolver.ClassifyPage() == page.ClassProduct:
		return StageProductView
	default:
		return StageBrowsing
	}
}

// Sync re-reads the cart snapshot and runs every transition that follows
// from it: purchase reset, activation, checkout entry, and content diffs.
// Called on storage-change notifications, on the polling fallback, and on
// navigation.
func (m *Machine) Sync(now time.Time) {
	if m.resolver.ClassifyPage() == page.ClassSuccess {
		m.reset()
		return
	}

	prev := m.snapshot
	next := m.reader.ReadCart()
	m.snapshot = next

	prevValue := storage.CartValue(prev)
	nextValue := storage.CartValue(next)

	if nextValue > 0 && m.state.CartFirstSeen == 0 {
		m.state.CartFirstSeen = now.UnixMilli()
		m.persist()
		m.emitter.Emit("cart_active", event.Payload{
			"cart_value": nextValue,
			"item_count": storage.CartCount(next),
		})
	}

	if nextValue > 0 && !m.state.CheckoutStarted && m.resolver.ClassifyPage() == page.ClassCheckout {
		// One-way transition; gates abandonment-stage labeling, no event
		// of its own.
		m.state.CheckoutStarted = true
		m.persist()
	}

	m.diff(prev, next, prevValue, nextValue)
}

// diff compares the two known snapshots and emits cart_cleared,
// cart_item_remove, and cart_quantity_change.
func (m *Machine) diff(prev, next []storage.CartItem, prevValue, nextValue float64) {
	if len(prev) == 0 {
		return
	}

	if nextValue == 0 && prevValue > 0 {
		m.emitter.Emit("cart_cleared", event.Payload{
			"previous_value": prevValue,
			"previous_items": storage.CartCount(prev),
		})
		return
	}

	nextByID := make(map[string]storage.CartItem, len(next))
	for _, it := range next {
		nextByID[it.Identity()] = it
	}

	for _, was := range prev {
		cur, kept := nextByID[was.Identity()]
		switch {
		case !kept && nextValue < prevValue:
			m.emitter.Emit("cart_item_remove", event.Payload{
				"sku":        was.SKU,
				"grams":      was.Grams,
				"name":       was.Name,
				"cart_value": nextValue,
			})
		case kept && cur.Count != was.Count:
			m.emitter.Emit("cart_quantity_change", event.Payload{
				"sku":        was.SKU,
				"grams":      was.Grams,
				"from_count": was.Count,
				"to_count":   cur.Count,
				"cart_value": nextValue,
			})
		}
	}
}

// CheckIdle emits cart_idle for every configured interval that has been
// passed since the cart was first seen and not yet tracked. Idempotent:
// each interval fires once per session. No-op on the success page or with
// an empty cart.
func (m *Machine) CheckIdle(now time.Time) {
	if m.state.CartFirstSeen == 0 || m.Value() <= 0 {
		return
	}
	if m.resolver.ClassifyPage() == page.ClassSuccess {
		return
	}

	elapsed := int((now.UnixMilli() - m.state.CartFirstSeen) / 1000)
	changed := false
	for _, interval := range m.intervals {
		if interval > elapsed || m.state.idleTracked(interval) {
			continue
		}
		m.state.TrackedIdle = append(m.state.TrackedIdle, interval)
		changed = true
		m.emitter.Emit("cart_idle", event.Payload{
			"idle_time_seconds": interval,
			"abandonment_stage": m.Stage(),
			"cart_value":        m.Value(),
		})
	}
	if changed {
		m.persist()
	}
}

// OnPageHide emits the final cart_abandonment when the page goes away with
// a non-empty cart off the success page.
func (m *Machine) OnPageHide(now time.Time) {
	if m.Value() <= 0 || m.resolver.ClassifyPage() == page.ClassSuccess {
		return
	}
	context := "page_leave"
	if m.state.CheckoutStarted {
		context = "checkout_abandon"
	}
	m.emitter.Emit("cart_abandonment", event.Payload{
		"context":                context,
		"cart_value":             m.Value(),
		"item_count":             m.ItemCount(),
		"time_with_cart_seconds": m.timeWithCart(now),
	})
}

// EmitExitAbandonment is the exit-intent path: a checkout page with a
// non-empty cart tags the abandonment with the checkout_exit stage.
func (m *Machine) EmitExitAbandonment(now time.Time) {
	if m.Value() <= 0 || m.resolver.ClassifyPage() != page.ClassCheckout {
		return
	}
	m.emitter.Emit("cart_abandonment", event.Payload{
		"context":                "checkout_exit",
		"cart_value":             m.Value(),
		"item_count":             m.ItemCount(),
		"time_with_cart_seconds": m.timeWithCart(now),
	})
}

func (m *Machine) timeWithCart(now time.Time) int {
	if m.state.CartFirstSeen == 0 {
		return 0
	}
	return int((now.UnixMilli() - m.state.CartFirstSeen) / 1000)
}

// reset returns the machine to no_cart and clears the persisted record.
// The purchase-completion path.
func (m *Machine) reset() {
	m.state = sessionState{}
	m.snapshot = nil
	storage.Drop(m.scopes.Session, storage.KeyCartSession)
}

func (m *Machine) persist() {
	storage.SetJSON(m.scopes.Session, storage.KeyCartSession, m.state)
}
