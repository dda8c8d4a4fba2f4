package page

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lnnemml/pulse/internal/storage"
)

// SessionTTL is the sliding inactivity window. A resolution inside the
// window extends it; a resolution after it mints a new session.
const SessionTTL = 30 * time.Minute

// Session is the session record persisted in session-scoped storage.
// IsNew is true only on the resolution that created the id.
type Session struct {
	ID        string
	CreatedAt int64 // epoch ms
	IsNew     bool
}

// IDGenerator mints session ids. Implemented by UUIDv7Generator
// (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so session ids
// sort by creation time across a visit's event stream.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for deterministic tests and
// golden stream comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order and
// panics when exhausted.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next fixed id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("page: FixedGenerator exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// persistedSession is the stored shape of the session record. The touch
// timestamp lives under its own key so extending the expiry is a single
// small write.
type persistedSession struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

// ResolveSession returns the current session, creating one when none
// exists or the sliding expiry has lapsed. Every resolution extends the
// expiry. Idempotent within the window: two calls inside SessionTTL return
// the same id.
func (r *Resolver) ResolveSession() Session {
	nowMS := r.clock.Now().UnixMilli()

	var stored persistedSession
	if storage.GetJSON(r.scopes.Session, storage.KeySessionID, &stored) && stored.ID != "" {
		touchedRaw, _ := r.scopes.Session.Get(storage.KeySessionTouchedAt)
		touched, err := strconv.ParseInt(touchedRaw, 10, 64)
		if err == nil && nowMS-touched <= SessionTTL.Milliseconds() {
			storage.Put(r.scopes.Session, storage.KeySessionTouchedAt, strconv.FormatInt(nowMS, 10))
			return Session{ID: stored.ID, CreatedAt: stored.CreatedAt, IsNew: false}
		}
	}

	fresh := Session{ID: r.ids.Generate(), CreatedAt: nowMS, IsNew: true}
	storage.SetJSON(r.scopes.Session, storage.KeySessionID, persistedSession{ID: fresh.ID, CreatedAt: nowMS})
	storage.Put(r.scopes.Session, storage.KeySessionTouchedAt, strconv.FormatInt(nowMS, 10))
	return fresh
}
