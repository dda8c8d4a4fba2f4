// Package storage abstracts the two persisted key-value scopes the engine
// uses: a session scope (cleared when the browser tab ends) and a durable
// scope (survives across sessions). Storage failures never propagate past
// this package's helpers; a page with broken storage tracks less, it never
// breaks.
package storage

import "encoding/json"

// Keys owned by the tracking engine. The cart contents key is owned by the
// external cart subsystem and is read-only here (see cart.go).
const (
	KeyVisitorMarker    = "pulse_visitor_seen"
	KeyUTMCache         = "pulse_utm_source"
	KeySessionID        = "pulse_session_id"
	KeySessionTouchedAt = "pulse_session_touched_at"
	KeyCartSession      = "pulse_cart_session"
	KeyExitIntentFired  = "pulse_exit_intent_fired"
)

// KV is one key-value storage scope.
//
// Set and Delete return errors (quota, private browsing); Get reports
// simple absence. Callers that cannot act on an error use the package
// helpers, which swallow it.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Scopes bundles the two storage scopes a page session runs against.
type Scopes struct {
	Session KV // cleared when the tab/session ends
	Durable KV // survives across sessions
}

// Memory is an in-memory KV used in tests, replays, and as the fallback
// when real storage is unavailable.
type Memory struct {
	values map[string]string
}

// NewMemory creates an empty in-memory scope.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the stored value for key.
func (m *Memory) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key. Never fails.
func (m *Memory) Set(key, value string) error {
	m.values[key] = value
	return nil
}

// Delete removes key. Never fails.
func (m *Memory) Delete(key string) error {
	delete(m.values, key)
	return nil
}

// Unavailable is a scope that stores nothing, modeling private-browsing or
// quota-exhausted storage. Reads always miss; writes always fail.
type Unavailable struct{}

// ErrUnavailable is returned by all Unavailable writes.
var ErrUnavailable = errStorageUnavailable{}

type errStorageUnavailable struct{}

func (errStorageUnavailable) Error() string { return "storage unavailable" }

func (Unavailable) Get(string) (string, bool) { return "", false }
func (Unavailable) Set(string, string) error  { return ErrUnavailable }
func (Unavailable) Delete(string) error       { return ErrUnavailable }

// GetJSON decodes the JSON value stored under key into out. Returns false
// on absence or malformed JSON: corrupted persisted state reads as the
// zero value, never as an error.
func GetJSON(kv KV, key string, out any) bool {
	raw, ok := kv.Get(key)
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false
	}
	return true
}

// SetJSON encodes v as JSON and stores it under key, swallowing failures.
func SetJSON(kv KV, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = kv.Set(key, string(raw))
}

// Put stores value under key, swallowing failures.
func Put(kv KV, key, value string) {
	_ = kv.Set(key, value)
}

// Drop removes key, swallowing failures.
func Drop(kv KV, key string) {
	_ = kv.Delete(key)
}
