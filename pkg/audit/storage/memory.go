package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/offerhub/verdict/pkg/audit"
)

// MemoryStorage implements the Storage interface using an in-memory slice.
// This implementation is intended for testing only.
type MemoryStorage struct {
	records []*audit.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Append stores an audit record in memory.
func (s *MemoryStorage) Append(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to protect against caller mutation
	recordCopy := *record
	s.records = append(s.records, &recordCopy)

	return nil
}

// List retrieves audit records matching the query filters, newest first.
func (s *MemoryStorage) List(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	if query == nil {
		query = &audit.Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*audit.Record
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})

	start := query.Offset
	if start > len(results) {
		return []*audit.Record{}, nil
	}
	results = results[start:]

	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results, nil
}

// Count returns the number of records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Close releases resources. No-op for memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}

func matchesQuery(record *audit.Record, query *audit.Query) bool {
	if query == nil {
		return true
	}
	if query.EntityType != "" && record.EntityType != query.EntityType {
		return false
	}
	if query.EntityID != "" && record.EntityID != query.EntityID {
		return false
	}
	if query.Action != "" && record.Action != query.Action {
		return false
	}
	if !query.Since.IsZero() && record.Timestamp.Before(query.Since) {
		return false
	}
	if !query.Until.IsZero() && record.Timestamp.After(query.Until) {
		return false
	}
	return true
}
