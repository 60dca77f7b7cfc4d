package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/common"
)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

// NewMemoryStore returns an empty store. A zero ttl keeps sessions until
// logout or restart.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
		newToken: func() (string, error) { return common.MakeRandHexString(TokenBytes) },
	}
}

func (s *MemoryStore) Login(ctx context.Context, identity string) (string, error) {
	if identity == "" {
		return "", common.ErrorInvalidInput
	}

	token, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("token generation error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.sessions[token]; taken {
		return "", fmt.Errorf("token collision: %w", common.ErrorInternal)
	}

	s.sessions[token] = Session{Token: token, Identity: identity, IssuedAt: s.now()}
	return token, nil
}

func (s *MemoryStore) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}

	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", common.ErrorUnauthorized
	}

	if s.expired(sess) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return "", common.ErrorUnauthorized
	}

	return sess.Identity, nil
}

func (s *MemoryStore) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Sweep evicts expired sessions and returns how many were dropped.
func (s *MemoryStore) Sweep(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for token, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

// Len reports the number of live and not yet swept sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(sess Session) bool {
	return s.ttl > 0 && !s.now().Before(sess.IssuedAt.Add(s.ttl))
}
