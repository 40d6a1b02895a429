package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var (
	// ErrSessionNotFound is returned when a session token is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session's lifetime has elapsed.
	ErrSessionExpired = errors.New("session expired")
)

// Session is a server-side flag correlated with a client-held opaque token.
// Expiry is by elapsed time since creation, not idle tracking.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session's lifetime has elapsed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Sessions is an in-memory session store. A restart signs the admin out.
type Sessions struct {
	mu   sync.Mutex
	ttl  time.Duration
	byID map[string]*Session
}

// NewSessions returns a store whose sessions live for ttl.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:  ttl,
		byID: make(map[string]*Session),
	}
}

// Create mints a new session with a fresh token.
func (s *Sessions) Create() *Session {
	now := time.Now()
	session := &Session{
		ID:        newSessionID(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Lock()
	s.byID[session.ID] = session
	s.mu.Unlock()
	return session
}

// Get returns the live session for id. Expired sessions are removed and
// reported as ErrSessionExpired.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		delete(s.byID, id)
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Destroy removes the session for id. Destroying an unknown id is a no-op.
func (s *Sessions) Destroy(id string) {
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
}

// Purge removes expired sessions and returns how many were dropped.
func (s *Sessions) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.byID {
		if session.IsExpired() {
			delete(s.byID, id)
			removed++
		}
	}
	return removed
}

// newSessionID returns a cryptographically random opaque token.
func newSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process has bigger problems.
		panic(err)
	}
	return hex.EncodeToString(b)
}
