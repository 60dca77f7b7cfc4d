package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/cryptox"
	"github.com/dmitrijs2005/securedrive/internal/logging"
	"github.com/dmitrijs2005/securedrive/internal/server/blobstore"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

func randomWrappedKey() *cryptox.WrappedKey {
	return &cryptox.WrappedKey{
		Ciphertext: common.GenerateRandByteArray(cryptox.WrappedKeySize),
		Nonce:      common.GenerateRandByteArray(cryptox.NonceSize),
		Salt:       common.GenerateRandByteArray(cryptox.SaltSize),
	}
}

func sampleUpload() *UploadInput {
	return &UploadInput{
		Blob:          common.GenerateRandByteArray(cryptox.NonceSize + cryptox.TagSize + 100),
		WrappedCEK:    common.GenerateRandByteArray(cryptox.WrappedKeySize),
		CEKWrapNonce:  common.GenerateRandByteArray(cryptox.NonceSize),
		EncryptedName: common.GenerateRandByteArray(cryptox.TagSize + 9),
		NameNonce:     common.GenerateRandByteArray(cryptox.NonceSize),
	}
}

// fakeIdentities returns canned errors.
type fakeIdentities struct {
	createErr error
	getOut    *models.Identity
	getErr    error
}

func (f *fakeIdentities) Create(ctx context.Context, identity *models.Identity) error {
	return f.createErr
}

func (f *fakeIdentities) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return f.getOut, f.getErr
}

// fakeSessions records calls and returns canned values.
type fakeSessions struct {
	loginToken string
	loginErr   error
	loggedIn   []string
}

func (f *fakeSessions) Login(ctx context.Context, identity string) (string, error) {
	f.loggedIn = append(f.loggedIn, identity)
	return f.loginToken, f.loginErr
}

func (f *fakeSessions) Authenticate(ctx context.Context, token string) (string, error) {
	return "", common.ErrorUnauthorized
}

func (f *fakeSessions) Logout(ctx context.Context, token string) error { return nil }

// fakeArtifacts wraps a real repository and injects errors per method.
type fakeArtifacts struct {
	putErr    error
	getErr    error
	listErr   error
	deleteErr error
	existsErr error
	exists    map[string]bool
}

func (f *fakeArtifacts) Put(ctx context.Context, a *models.Artifact) error { return f.putErr }

func (f *fakeArtifacts) Get(ctx context.Context, name string) (*models.Artifact, error) {
	return nil, f.getErr
}

func (f *fakeArtifacts) ListByOwner(ctx context.Context, owner string) ([]*models.Artifact, error) {
	return nil, f.listErr
}

func (f *fakeArtifacts) Delete(ctx context.Context, name, owner string) error { return f.deleteErr }

func (f *fakeArtifacts) Exists(ctx context.Context, name string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.exists[name], nil
}

// faultyBlobs wraps a blob store and fails selected operations.
type faultyBlobs struct {
	blobstore.Store
	putErr    error
	getErr    error
	deleteErr error
	listErr   error
	listOut   []blobstore.Info
	deleted   []string
}

func (f *faultyBlobs) Put(ctx context.Context, name string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Store.Put(ctx, name, data)
}

func (f *faultyBlobs) Get(ctx context.Context, name string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, name)
}

func (f *faultyBlobs) Delete(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, name)
}

func (f *faultyBlobs) List(ctx context.Context) ([]blobstore.Info, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listOut != nil {
		return f.listOut, nil
	}
	return f.Store.List(ctx)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
