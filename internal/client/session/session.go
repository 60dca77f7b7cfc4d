// Package session holds the state of a logged-in CLI user. The Master Key
// is kept in a memguard LockedBuffer for the lifetime of the session and
// destroyed on Close.
package session

import (
	"sync"

	"github.com/awnumar/memguard"
)

type Session struct {
	mu        sync.RWMutex
	email     string
	token     string
	masterKey *memguard.LockedBuffer
}

// New moves masterKey into guarded memory. The caller's slice is wiped.
func New(email, token string, masterKey []byte) *Session {
	return &Session{
		email:     email,
		token:     token,
		masterKey: memguard.NewBufferFromBytes(masterKey),
	}
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Active reports whether the session still holds a Master Key.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.masterKey != nil && s.masterKey.IsAlive()
}

// WithMasterKey calls fn with the Master Key. The slice is only valid
// inside fn and must not be retained.
func (s *Session) WithMasterKey(fn func(mk []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.masterKey == nil || !s.masterKey.IsAlive() {
		return ErrClosed
	}
	return fn(s.masterKey.Bytes())
}

// Close destroys the Master Key and forgets the token. It is safe to call
// more than once.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.masterKey != nil {
		s.masterKey.Destroy()
		s.masterKey = nil
	}
	s.token = ""
}
