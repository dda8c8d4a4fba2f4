// Package store persists emitted event streams in SQLite so CLI replays
// can be inspected and compared after the fact.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lnnemml/pulse/internal/event"
)

//go:embed schema.sql
var schemaSQL string

// Store is a durable event-stream store. SQLite with WAL mode for
// concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at path, applying pragmas and
// the schema. Idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// AppendRun writes one emitted stream under runID, preserving emission
// order. Each envelope row carries its canonical payload JSON and content
// hash.
func (s *Store) AppendRun(ctx context.Context, runID string, envelopes []event.Envelope) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, name, timestamp, page_url, page_path, payload, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, env := range envelopes {
		hash, err := event.Hash(env)
		if err != nil {
			return fmt.Errorf("hash envelope %d: %w", i, err)
		}
		var payload sql.NullString
		if len(env.Payload) > 0 {
			raw, err := event.MarshalCanonical(env.Payload)
			if err != nil {
				return fmt.Errorf("marshal payload %d: %w", i, err)
			}
			payload = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, env.Name, env.Timestamp, env.PageURL, env.PagePath, payload, hash); err != nil {
			return fmt.Errorf("insert envelope %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// StoredEvent is one persisted envelope row.
type StoredEvent struct {
	Seq       int64
	RunID     string
	Name      string
	Timestamp string
	PageURL   string
	PagePath  string
	Payload   string
	Hash      string
}

// ReadRun returns the stored stream for runID in emission order.
func (s *Store) ReadRun(ctx context.Context, runID string) ([]StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, run_id, name, timestamp, page_url, page_path, COALESCE(payload, ''), hash
		FROM events WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var ev StoredEvent
		if err := rows.Scan(&ev.Seq, &ev.RunID, &ev.Name, &ev.Timestamp, &ev.PageURL, &ev.PagePath, &ev.Payload, &ev.Hash); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Runs returns the distinct run ids in the store, oldest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM events GROUP BY run_id ORDER BY MIN(seq)`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
