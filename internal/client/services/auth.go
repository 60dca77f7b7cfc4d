package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securedrive/internal/api"
	"github.com/dmitrijs2005/securedrive/internal/client/client"
	"github.com/dmitrijs2005/securedrive/internal/client/session"
	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/cryptox"
)

// AuthService defines authentication operations for the CLI.
type AuthService interface {
	Register(ctx context.Context, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (*session.Session, error)
	Logout(ctx context.Context, s *session.Session) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
}

func NewAuthService(c client.Client) AuthService {
	return &authService{client: c}
}

// Register creates a Master Key, wraps it under password and sends the
// wrapped form and the auth verifier to the server. The raw key never
// leaves this function.
func (a *authService) Register(ctx context.Context, email string, password []byte) error {
	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		return fmt.Errorf("%w: email and password are required", common.ErrorInvalidInput)
	}

	masterKey := cryptox.GenerateMasterKey()
	defer common.WipeByteArray(masterKey)

	wrapped, err := cryptox.WrapMasterKey(masterKey, password)
	if err != nil {
		return err
	}

	authKey, err := cryptox.DeriveAuthKey(masterKey)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(authKey)

	return a.client.Register(ctx, &api.RegisterRequest{
		Email:            email,
		WrappedMasterKey: wrapped.Ciphertext,
		IV:               wrapped.Nonce,
		Salt:             wrapped.Salt,
		Verifier:         cryptox.MakeVerifier(authKey),
	})
}

// Login unwraps the Master Key locally, then exchanges the derived auth key
// for a session token. A wrong password and an unknown email both fail at
// the unwrap step with common.ErrAuthFailure.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*session.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorInvalidInput)
	}

	resp, err := a.client.GetWrappedKey(ctx, email)
	if err != nil {
		return nil, err
	}

	masterKey, err := cryptox.UnwrapMasterKey(&cryptox.WrappedKey{
		Ciphertext: resp.WrappedMasterKey,
		Nonce:      resp.IV,
		Salt:       resp.Salt,
	}, password)
	if err != nil {
		return nil, err
	}

	authKey, err := cryptox.DeriveAuthKey(masterKey)
	if err != nil {
		common.WipeByteArray(masterKey)
		return nil, err
	}
	defer common.WipeByteArray(authKey)

	token, err := a.client.Login(ctx, email, authKey)
	if err != nil {
		common.WipeByteArray(masterKey)
		return nil, err
	}

	return session.New(email, token, masterKey), nil
}

// Logout ends the server session and destroys the local one. The local
// session is destroyed even when the server call fails.
func (a *authService) Logout(ctx context.Context, s *session.Session) error {
	if !s.Active() {
		return nil
	}
	token := s.Token()
	s.Close()

	err := a.client.Logout(ctx, token)
	if errors.Is(err, common.ErrorUnauthorized) {
		// already expired on the server
		return nil
	}
	return err
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
