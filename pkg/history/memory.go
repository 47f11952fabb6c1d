package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store using an in-memory slice. Intended for
// tests and the simulation harness.
type MemoryStore struct {
	runs []*Run
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save records a run.
func (s *MemoryStore) Save(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCopy := *run
	s.runs = append(s.runs, &runCopy)

	return nil
}

// List returns runs matching the query, newest first.
func (s *MemoryStore) List(ctx context.Context, query *Query) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Run
	for _, run := range s.runs {
		if runMatches(run, query) {
			runCopy := *run
			results = append(results, &runCopy)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})

	if query != nil {
		if query.Offset > len(results) {
			return []*Run{}, nil
		}
		results = results[query.Offset:]
		if query.Limit > 0 && query.Limit < len(results) {
			results = results[:query.Limit]
		}
	}

	return results, nil
}

// Count returns the number of runs matching the query.
func (s *MemoryStore) Count(ctx context.Context, query *Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, run := range s.runs {
		if runMatches(run, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes runs matching the query.
func (s *MemoryStore) Delete(ctx context.Context, query *Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*Run
	var deleted int64
	for _, run := range s.runs {
		if runMatches(run, query) {
			deleted++
			continue
		}
		kept = append(kept, run)
	}
	s.runs = kept

	return deleted, nil
}

// Close releases resources. No-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func runMatches(run *Run, query *Query) bool {
	if query == nil {
		return true
	}
	if query.Kind != "" && run.Kind != query.Kind {
		return false
	}
	if query.SubjectID != "" && run.SubjectID != query.SubjectID {
		return false
	}
	if !query.Since.IsZero() && run.Timestamp.Before(query.Since) {
		return false
	}
	if !query.Until.IsZero() && run.Timestamp.After(query.Until) {
		return false
	}
	return true
}
