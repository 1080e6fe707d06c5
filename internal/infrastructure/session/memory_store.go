package session

import (
	"context"
	"sync"
	"time"

	"github.com/shopbot/backend/internal/domain/conversation"
)

// entry is one stored session with its expiration
type entry struct {
	data      []byte
	expiresAt time.Time
}

// InMemorySessionStore implements conversation.Store using an in-memory map.
// This is suitable for single-instance deployments and testing. Sessions are
// stored serialized so Get hands back a fresh copy every time, exactly as the
// Redis store does.
type InMemorySessionStore struct {
	mu        sync.RWMutex
	entries   map[int64]entry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySessionStore creates a new in-memory session store. A zero ttl
// means sessions never expire. A background goroutine cleans up expired
// entries.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	store := &InMemorySessionStore{
		entries:  make(map[int64]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Get returns the live session for a user, or conversation.ErrNoSession
func (s *InMemorySessionStore) Get(ctx context.Context, userID int64) (conversation.Session, error) {
	s.mu.RLock()
	e, exists := s.entries[userID]
	s.mu.RUnlock()

	if !exists {
		return nil, conversation.ErrNoSession
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return nil, conversation.ErrNoSession
	}

	return conversation.Unmarshal(e.data)
}

// Put stores the session for a user, replacing any previous one
func (s *InMemorySessionStore) Put(ctx context.Context, userID int64, session conversation.Session) error {
	data, err := conversation.Marshal(session)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[userID] = entry{data: data, expiresAt: expiresAt}
	s.mu.Unlock()

	return nil
}

// Clear removes the session for a user
func (s *InMemorySessionStore) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored sessions (for testing/monitoring)
func (s *InMemorySessionStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// cleanupLoop periodically removes expired entries
func (s *InMemorySessionStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired entries from the store
func (s *InMemorySessionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for userID, e := range s.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.entries, userID)
		}
	}
}

// Ensure InMemorySessionStore implements conversation.Store
var _ conversation.Store = (*InMemorySessionStore)(nil)
