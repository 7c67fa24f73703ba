package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clearchart/intake/internal/auth"
)

// SessionStore holds authenticated identities between the token exchange
// and the form submission.
type SessionStore interface {
	Put(identity auth.Identity) string
	Get(sessionID string) (auth.Identity, bool)
	Delete(sessionID string)
}

type sessionEntry struct {
	identity  auth.Identity
	expiresAt time.Time
}

// MemoryStore is an in-process SessionStore with per-entry TTL. Sessions do
// not survive a restart.
type MemoryStore struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]sessionEntry
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]sessionEntry),
	}
}

// Put stores an identity under a fresh session ID and returns the ID.
func (s *MemoryStore) Put(identity auth.Identity) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = sessionEntry{
		identity:  identity,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return id
}

// Get returns the identity for a session ID, expiring stale entries.
func (s *MemoryStore) Get(sessionID string) (auth.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return auth.Identity{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.sessions, sessionID)
		return auth.Identity{}, false
	}
	return entry.identity, true
}

// Delete removes a session.
func (s *MemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}
