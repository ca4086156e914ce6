// Package journal defines the dispatch journal: an append-only record of
// every action command the runtime actually executed. Resolved-but-dropped
// actions never reach the journal; they are derived values, not events.
package journal

import (
	"context"
	"time"
)

// Entry records one executed command.
type Entry struct {
	// RequestID is the per-dispatch request id (also sent upstream).
	RequestID string
	// CommandKey is the action key of the executed command.
	CommandKey string
	// Method and Endpoint describe the request that was issued.
	Method   string
	Endpoint string
	// StatusCode is the HTTP status, 0 when the request never completed.
	StatusCode int
	// Error is the transport error string, empty on success.
	Error string
	// Duration is how long the dispatch took.
	Duration time.Duration
	// DispatchedAt is when the request was issued (UTC).
	DispatchedAt time.Time
}

// Store persists journal entries.
type Store interface {
	// Append records one executed command.
	Append(ctx context.Context, e *Entry) error
	// List returns the most recent entries, newest first, up to limit.
	List(ctx context.Context, limit int) ([]Entry, error)
	// Prune deletes entries dispatched before the cutoff and returns how
	// many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
	// Close releases the store's resources.
	Close() error
}
