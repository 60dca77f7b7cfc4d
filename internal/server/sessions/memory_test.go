package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClockedStore(ttl time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(ttl)
	s.now = clock.Now
	return s, clock
}

func TestMemoryStore_ImplementsStore(t *testing.T) {
	var _ Store = (*MemoryStore)(nil)
}

func TestMemoryStore_LoginAuthenticateLogout(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	token, err := s.Login(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, token, 2*TokenBytes)

	id, err := s.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", id)

	require.NoError(t, s.Logout(ctx, token))
	_, err = s.Authenticate(ctx, token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	// idempotent
	require.NoError(t, s.Logout(ctx, token))
	require.NoError(t, s.Logout(ctx, "never-issued"))
}

func TestMemoryStore_Login_EmptyIdentity(t *testing.T) {
	_, err := NewMemoryStore(0).Login(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestMemoryStore_Login_TokenError(t *testing.T) {
	s := NewMemoryStore(0)
	s.newToken = func() (string, error) { return "", errors.New("no entropy") }

	_, err := s.Login(context.Background(), "alice@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entropy")
}

func TestMemoryStore_Login_Collision(t *testing.T) {
	s := NewMemoryStore(0)
	s.newToken = func() (string, error) { return "fixed", nil }
	ctx := context.Background()

	_, err := s.Login(ctx, "alice@example.com")
	require.NoError(t, err)

	_, err = s.Login(ctx, "bob@example.com")
	assert.ErrorIs(t, err, common.ErrorInternal)

	id, err := s.Authenticate(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", id)
}

func TestMemoryStore_Authenticate_Unknown(t *testing.T) {
	s := NewMemoryStore(0)
	for _, tok := range []string{"", "deadbeef"} {
		_, err := s.Authenticate(context.Background(), tok)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	}
}

func TestMemoryStore_MultipleSessionsPerIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	t1, err := s.Login(ctx, "alice@example.com")
	require.NoError(t, err)
	t2, err := s.Login(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	require.NoError(t, s.Logout(ctx, t1))

	id, err := s.Authenticate(ctx, t2)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", id)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, clock := newClockedStore(time.Minute)

	token, err := s.Login(ctx, "alice@example.com")
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	_, err = s.Authenticate(ctx, token)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = s.Authenticate(ctx, token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, 0, s.Len(), "expired session is evicted on access")
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s, clock := newClockedStore(time.Minute)

	_, err := s.Login(ctx, "old@example.com")
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	fresh, err := s.Login(ctx, "new@example.com")
	require.NoError(t, err)

	clock.Advance(45 * time.Second)
	assert.Equal(t, 1, s.Sweep(ctx))
	assert.Equal(t, 1, s.Len())

	id, err := s.Authenticate(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", id)
}

func TestMemoryStore_Sweep_NoTTL(t *testing.T) {
	ctx := context.Background()
	s, clock := newClockedStore(0)

	_, err := s.Login(ctx, "alice@example.com")
	require.NoError(t, err)
	clock.Advance(1000 * time.Hour)

	assert.Equal(t, 0, s.Sweep(ctx))
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := s.Login(ctx, "alice@example.com")
			if !assert.NoError(t, err) {
				return
			}
			_, err = s.Authenticate(ctx, tok)
			assert.NoError(t, err)
			_ = s.Sweep(ctx)
			assert.NoError(t, s.Logout(ctx, tok))
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, s.Len())
}
