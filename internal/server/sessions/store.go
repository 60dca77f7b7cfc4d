// Package sessions issues and checks the opaque bearer tokens handed out on
// login. Sessions live in process memory and die with the process.
package sessions

import (
	"context"
	"time"
)

// TokenBytes is the amount of randomness in a token. Tokens are hex encoded,
// so the wire form is twice as long.
const TokenBytes = 32

type Session struct {
	Token    string
	Identity string
	IssuedAt time.Time
}

type Store interface {
	// Login creates a new session for identity and returns its token.
	Login(ctx context.Context, identity string) (string, error)
	// Authenticate resolves a token to its identity or yields
	// common.ErrorUnauthorized.
	Authenticate(ctx context.Context, token string) (string, error)
	// Logout drops the session. Unknown tokens are ignored.
	Logout(ctx context.Context, token string) error
}
