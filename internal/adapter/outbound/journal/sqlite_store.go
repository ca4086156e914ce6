// Package journal provides the SQLite-backed dispatch journal store.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matanmalka1/actiongate/internal/domain/journal"
)

// defaultListLimit caps List when the caller passes a non-positive limit.
const defaultListLimit = 100

const schema = `
CREATE TABLE IF NOT EXISTS dispatches (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id    TEXT NOT NULL,
	command_key   TEXT NOT NULL,
	method        TEXT NOT NULL,
	endpoint      TEXT NOT NULL,
	status_code   INTEGER NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	duration_ms   INTEGER NOT NULL,
	dispatched_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispatches_dispatched_at ON dispatches (dispatched_at);
`

// SQLiteStore implements journal.Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements journal.Store.
var _ journal.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the journal database at path and applies
// the schema. ":memory:" gives an ephemeral store for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	// SQLite handles one writer at a time; a larger pool only produces
	// SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append records one executed command.
func (s *SQLiteStore) Append(ctx context.Context, e *journal.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dispatches
		 (request_id, command_key, method, endpoint, status_code, error, duration_ms, dispatched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.CommandKey, e.Method, e.Endpoint,
		e.StatusCode, e.Error, e.Duration.Milliseconds(), e.DispatchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, command_key, method, endpoint, status_code, error, duration_ms, dispatched_at
		 FROM dispatches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		var durationMS int64
		if err := rows.Scan(&e.RequestID, &e.CommandKey, &e.Method, &e.Endpoint,
			&e.StatusCode, &e.Error, &durationMS, &e.DispatchedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

// Prune deletes entries dispatched before the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM dispatches WHERE dispatched_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune journal rows affected: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
