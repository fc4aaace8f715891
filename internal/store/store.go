// In file: internal/store/store.go

// Package store defines the key-value persistence boundary of the chatbot:
// a TTL cache for per-question facts and an ordered, per-user history log.
// The production implementation is Redis; an in-memory implementation backs
// tests and Redis-less local runs.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned (wrapped) by every operation when the
// underlying store cannot be reached. Callers are expected to degrade:
// reads behave as a global cache miss, writes are logged and dropped
// without losing the in-flight answer.
var ErrUnavailable = errors.New("store unavailable")

// HistoryTTL is the sliding retention window for a user's history
// collection. Every append pushes expiry out to now+HistoryTTL; a user who
// goes quiet for the full window loses the whole collection at once.
const HistoryTTL = 7 * 24 * time.Hour

// RecentLimit caps how many history records a single retrieval returns.
const RecentLimit = 50

// Record is one logged conversation turn: the question asked and the text
// that was actually shown for it (full answer or cached summary).
type Record struct {
	// ID is a per-record nonce. Two records appended within the same
	// timestamp tick must both survive, so the ID keeps them distinct
	// members of the ordered collection.
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	// Label records which answer form was shown: "full" or "summary".
	Label string `json:"label"`
}

// CacheStore is the scalar half of the boundary: namespaced keys with
// per-key expiry. Keys are built by the keyspace package; values are opaque
// strings.
type CacheStore interface {
	// Get returns the value and true if the key is present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetWithTTL upserts the key, overwriting any existing value and
	// resetting its expiry to now+ttl.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Exists reports whether the key is present and unexpired. A present
	// empty value still counts.
	Exists(ctx context.Context, key string) (bool, error)
}

// HistoryStore is the ordered half of the boundary: one append-only,
// timestamp-sorted collection per user, with sliding retention.
type HistoryStore interface {
	// Append adds the record to the user's collection and refreshes the
	// collection's retention TTL to HistoryTTL from now.
	Append(ctx context.Context, user string, rec Record) error

	// Recent returns up to limit records, most recent first. A user with no
	// history yields an empty slice, not an error.
	Recent(ctx context.Context, user string, limit int) ([]Record, error)

	// Clear deletes the user's entire collection. Clearing an absent
	// collection succeeds silently.
	Clear(ctx context.Context, user string) error
}
