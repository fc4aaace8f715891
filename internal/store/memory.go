// In file: internal/store/memory.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory implements both store interfaces with plain maps. It exists for
// tests and for running the chatbot locally without a Redis instance; it
// honors the same TTL and ordering semantics as the Redis implementation.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
	history map[string]*memoryHistory
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type memoryHistory struct {
	records   []Record
	expiresAt time.Time
}

var (
	_ CacheStore   = (*Memory)(nil)
	_ HistoryStore = (*Memory)(nil)
)

// NewMemory returns a store running on the wall clock.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock lets tests drive expiry with a fake clock.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		now:     now,
		entries: make(map[string]memoryEntry),
		history: make(map[string]*memoryHistory),
	}
}

func (s *Memory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *Memory) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Memory) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

func (s *Memory) Append(_ context.Context, user string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.history[user]
	if !ok || s.now().After(h.expiresAt) {
		h = &memoryHistory{}
		s.history[user] = h
	}
	h.records = append(h.records, rec)
	h.expiresAt = s.now().Add(HistoryTTL)
	return nil
}

func (s *Memory) Recent(_ context.Context, user string, limit int) ([]Record, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.history[user]
	if !ok || s.now().After(h.expiresAt) {
		delete(s.history, user)
		return []Record{}, nil
	}

	records := make([]Record, len(h.records))
	copy(records, h.records)
	// Newest first; SliceStable keeps same-timestamp records in insertion
	// order instead of dropping or reshuffling them.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *Memory) Clear(_ context.Context, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, user)
	return nil
}
