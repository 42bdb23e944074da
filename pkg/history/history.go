// Package history records completed resolutions for later inspection.
//
// Serve mode appends a [Record] after every successful API resolution so
// operators can audit what was resolved, when, and to which artifact set.
// Two backends exist: an in-memory ring for single-instance deployments
// and tests, and a MongoDB collection for durable multi-instance setups.
package history

import (
	"context"
	"sync"
	"time"
)

// Record is one completed resolution.
type Record struct {
	ID        string    `bson:"_id" json:"id"`
	Project   string    `bson:"project" json:"project"`
	Artifacts []string  `bson:"artifacts" json:"artifacts"`
	Duration  int64     `bson:"duration_ms" json:"duration_ms"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Store persists resolution records.
type Store interface {
	// Append stores a record.
	Append(ctx context.Context, rec Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// memoryLimit bounds the in-memory backlog.
const memoryLimit = 256

// MemoryStore keeps the most recent records in memory.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a record, evicting the oldest past the backlog limit.
func (s *MemoryStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if len(s.records) > memoryLimit {
		s.records = s.records[len(s.records)-memoryLimit:]
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(limit, len(s.records))
	out := make([]Record, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
