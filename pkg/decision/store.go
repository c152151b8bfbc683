package decision

import (
	"context"
	"sort"
	"sync"
)

// Store persists suspended workflow records keyed by thread ID so a human can
// resolve them arbitrarily later, across process interactions.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Load(ctx context.Context, threadID string) (*Record, error)
	Delete(ctx context.Context, threadID string) error
	ListPending(ctx context.Context) ([]*Record, error)
}

// MemoryStore is a process-local Store used in tests and single-process runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Save stores a copy of the record.
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ThreadID == "" {
		return ErrThreadNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ThreadID] = rec.Clone()
	return nil
}

// Load returns a copy of the record for the given thread ID.
func (s *MemoryStore) Load(ctx context.Context, threadID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[threadID]
	if !ok {
		return nil, ErrThreadNotFound
	}
	return rec.Clone(), nil
}

// Delete removes the record for the given thread ID, if present.
func (s *MemoryStore) Delete(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, threadID)
	return nil
}

// ListPending returns copies of all records awaiting human review, ordered by
// thread ID for stable output.
func (s *MemoryStore) ListPending(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []*Record
	for _, rec := range s.records {
		if rec.Status == StatusAwaitingHumanReview {
			pending = append(pending, rec.Clone())
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ThreadID < pending[j].ThreadID
	})
	return pending, nil
}
