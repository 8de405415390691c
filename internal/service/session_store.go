package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const sessionTokenBytes = 32

type session struct {
	userID    int64
	expiresAt time.Time
}

// SessionStore holds opaque bearer tokens issued at login. Tokens live in
// process memory only and do not survive a restart.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]session),
	}
}

// Issue creates a new token for userID and drops expired sessions.
func (s *SessionStore) Issue(userID int64) (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	s.sessions[token] = session{userID: userID, expiresAt: now.Add(s.ttl)}
	return token, nil
}

// sweepLocked drops every expired session. Callers hold s.mu.
func (s *SessionStore) sweepLocked(now time.Time) {
	for token, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
}

// Lookup returns the user a live token belongs to. Expired tokens are
// dropped.
func (s *SessionStore) Lookup(token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, false
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, token)
		return 0, false
	}
	return sess.userID, true
}

func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
