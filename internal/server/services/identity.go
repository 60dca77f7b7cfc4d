// Package services contains server-side business logic. IdentityService
// handles registration, the wrapped-key lookup that precedes login, and
// session issue/revocation.
package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/cryptox"
	"github.com/dmitrijs2005/securedrive/internal/logging"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
	"github.com/dmitrijs2005/securedrive/internal/server/repositories/identities"
	"github.com/dmitrijs2005/securedrive/internal/server/sessions"
	"golang.org/x/crypto/hkdf"
)

const (
	decoyInfo = "securedrive/decoy/v1"

	// maxEmailLength follows the SMTP path limit.
	maxEmailLength = 254
)

// IdentityService registers identities, hands out wrapped keys and manages
// login sessions.
type IdentityService struct {
	identities  identities.Repository
	sessions    sessions.Store
	decoySecret []byte
	log         logging.Logger
}

// NewIdentityService wires the identity repository and session store.
// secretKey seeds the decoy key material served for unknown emails and must
// stay stable across restarts.
func NewIdentityService(repo identities.Repository, store sessions.Store, secretKey string, log logging.Logger) *IdentityService {
	return &IdentityService{
		identities:  repo,
		sessions:    store,
		decoySecret: []byte(secretKey),
		log:         log,
	}
}

// NormalizeEmail trims and lowercases an address and checks it is a bare
// addr-spec.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > maxEmailLength {
		return "", common.ErrorInvalidInput
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.ErrorInvalidInput
	}
	return email, nil
}

// Register stores a new identity. The Master Key arrives already wrapped;
// verifier is SHA-256 of the auth key the client will present at login.
func (s *IdentityService) Register(ctx context.Context, email string, wrapped *cryptox.WrappedKey, verifier []byte) (*models.Identity, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if wrapped == nil ||
		len(wrapped.Ciphertext) != cryptox.WrappedKeySize ||
		len(wrapped.Nonce) != cryptox.NonceSize ||
		len(wrapped.Salt) != cryptox.SaltSize ||
		len(verifier) != sha256.Size {
		return nil, common.ErrorInvalidInput
	}

	identity := &models.Identity{
		Email:              email,
		WrappedMasterKey:   wrapped.Ciphertext,
		MasterKeyWrapNonce: wrapped.Nonce,
		KDFSalt:            wrapped.Salt,
		AuthVerifier:       verifier,
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating identity: %w", err)
	}

	s.log.Info(ctx, "identity registered", "email", email)
	return identity, nil
}

// GetWrappedKey returns the stored wrapped Master Key. Unknown emails get a
// stable decoy of the same shape, so unwrapping fails exactly as it does for
// a wrong password.
func (s *IdentityService) GetWrappedKey(ctx context.Context, email string) (*cryptox.WrappedKey, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		return s.decoyWrappedKey(email)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading identity: %w", err)
	}

	return &cryptox.WrappedKey{
		Ciphertext: identity.WrappedMasterKey,
		Nonce:      identity.MasterKeyWrapNonce,
		Salt:       identity.KDFSalt,
	}, nil
}

// Login checks authKey against the stored verifier and opens a session.
// Unknown emails and wrong keys are indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, email string, authKey []byte) (string, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	if len(authKey) != cryptox.KeySize {
		return "", common.ErrorInvalidInput
	}

	identity, err := s.identities.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		s.log.Info(ctx, "login rejected", "email", email, "reason", "unknown identity")
		return "", common.ErrorUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("error loading identity: %w", err)
	}

	if !cryptox.CheckVerifier(identity.AuthVerifier, authKey) {
		s.log.Info(ctx, "login rejected", "email", email, "reason", "verifier mismatch")
		return "", common.ErrorUnauthorized
	}

	token, err := s.sessions.Login(ctx, identity.Email)
	if err != nil {
		return "", fmt.Errorf("error opening session: %w", err)
	}
	return token, nil
}

func (s *IdentityService) Authenticate(ctx context.Context, token string) (string, error) {
	return s.sessions.Authenticate(ctx, token)
}

func (s *IdentityService) Logout(ctx context.Context, token string) error {
	return s.sessions.Logout(ctx, token)
}

func (s *IdentityService) decoyWrappedKey(email string) (*cryptox.WrappedKey, error) {
	buf := make([]byte, cryptox.SaltSize+cryptox.NonceSize+cryptox.WrappedKeySize)
	r := hkdf.New(sha256.New, s.decoySecret, []byte(email), []byte(decoyInfo))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("decoy derivation error: %w", err)
	}

	return &cryptox.WrappedKey{
		Salt:       buf[:cryptox.SaltSize],
		Nonce:      buf[cryptox.SaltSize : cryptox.SaltSize+cryptox.NonceSize],
		Ciphertext: buf[cryptox.SaltSize+cryptox.NonceSize:],
	}, nil
}
