package session

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_HoldsKeyUntilClose(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	want := append([]byte(nil), key...)

	s := New("alice@example.com", "tok", key)

	assert.Equal(t, make([]byte, 32), key, "source slice must be wiped")
	assert.True(t, s.Active())
	assert.Equal(t, "alice@example.com", s.Email())
	assert.Equal(t, "tok", s.Token())

	var seen []byte
	require.NoError(t, s.WithMasterKey(func(mk []byte) error {
		seen = append(seen, mk...)
		return nil
	}))
	assert.Equal(t, want, seen)

	s.Close()
	assert.False(t, s.Active())
	assert.Empty(t, s.Token())
	assert.Equal(t, "alice@example.com", s.Email())

	err := s.WithMasterKey(func([]byte) error {
		t.Fatal("must not be called after Close")
		return nil
	})
	require.ErrorIs(t, err, ErrClosed)

	s.Close()
}

func TestSession_NilIsInactive(t *testing.T) {
	var s *Session
	assert.False(t, s.Active())
	s.Close()
}

func TestSession_WithMasterKeyPropagatesError(t *testing.T) {
	s := New("a@b.c", "t", bytes.Repeat([]byte{1}, 32))
	t.Cleanup(s.Close)

	boom := assert.AnError
	require.ErrorIs(t, s.WithMasterKey(func([]byte) error { return boom }), boom)
}
