package forms

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"
)

// MemoryStore keeps form state in process.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	state   State
	expires time.Time
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates a store whose entries expire ttl after their last read or write.
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the state for id and pushes its expiry out by the TTL.
func (s *MemoryStore) Get(_ context.Context, id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return State{}, fmt.Errorf("form %s: %w", id, ErrNotFound)
	}
	now := s.now()
	if !now.Before(entry.expires) {
		delete(s.entries, id)
		return State{}, fmt.Errorf("form %s: %w", id, ErrNotFound)
	}
	entry.expires = now.Add(s.ttl)
	s.entries[id] = entry
	state := entry.state
	state.Selections = maps.Clone(entry.state.Selections)
	return state, nil
}

// Put stores state and refreshes its expiry. Expired entries are swept on write.
func (s *MemoryStore) Put(_ context.Context, state State) error {
	if state.ID == "" {
		return fmt.Errorf("put form: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.entries {
		if !now.Before(entry.expires) {
			delete(s.entries, id)
		}
	}
	state.Selections = maps.Clone(state.Selections)
	s.entries[state.ID] = memoryEntry{state: state, expires: now.Add(s.ttl)}
	return nil
}

// Delete removes the state for id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
