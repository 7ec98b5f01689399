package session

import (
	"context"
	"errors"
	"sync"
)

// InMemoryStore is a volatile Store keeping records in a process local map.
// It is safe for concurrent access and suited for tests or single instance
// servers. Records are cloned on the way in and out so callers never share
// state with the store.
type InMemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]*Record
	latest  map[string]string
	maxRuns int
	order   []string
}

// InMemoryOptions configure an InMemoryStore.
type InMemoryOptions struct {
	// MaxRuns evicts the oldest runs once exceeded (0 = unbounded).
	MaxRuns int
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore(optFns ...func(o *InMemoryOptions)) *InMemoryStore {
	opts := InMemoryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryStore{
		runs:    make(map[string]*Record),
		latest:  make(map[string]string),
		maxRuns: opts.MaxRuns,
	}
}

// Save stores a clone of rec.
func (s *InMemoryStore) Save(_ context.Context, rec *Record) error {
	if rec == nil || rec.RunID == "" {
		return errors.New("session: record without run id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[rec.RunID]; !exists {
		s.order = append(s.order, rec.RunID)
	}
	s.runs[rec.RunID] = rec.Clone()
	if rec.SessionID != "" {
		s.latest[rec.SessionID] = rec.RunID
	}

	s.evictLocked()

	return nil
}

// Get returns a clone of the run record.
func (s *InMemoryStore) Get(_ context.Context, runID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Latest returns a clone of the newest record of the session.
func (s *InMemoryStore) Latest(ctx context.Context, sessionID string) (*Record, error) {
	s.mu.RLock()
	runID, ok := s.latest[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return s.Get(ctx, runID)
}

// Delete removes a run record.
func (s *InMemoryStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(runID)
	return nil
}

// Len returns the number of stored runs.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func (s *InMemoryStore) evictLocked() {
	for s.maxRuns > 0 && len(s.order) > s.maxRuns {
		s.deleteLocked(s.order[0])
	}
}

// deleteLocked drops a run and its session pointer; caller holds the write lock.
func (s *InMemoryStore) deleteLocked(runID string) {
	rec, ok := s.runs[runID]
	if !ok {
		return
	}
	delete(s.runs, runID)

	if s.latest[rec.SessionID] == runID {
		delete(s.latest, rec.SessionID)
	}

	for i, id := range s.order {
		if id == runID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
