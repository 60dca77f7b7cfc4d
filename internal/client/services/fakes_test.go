package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/securedrive/internal/api"
	"github.com/dmitrijs2005/securedrive/internal/common"
)

// fakeClient is an in-process stand-in for the HTTP client. It stores what
// it is given and plays it back, enough to exercise the crypto paths.
type fakeClient struct {
	mu sync.Mutex

	registered *api.RegisterRequest
	loginKey   []byte
	token      string
	loggedOut  []string

	uploads map[string]*api.UploadMeta
	blobs   map[string][]byte
	seq     int

	registerErr error
	loginErr    error
	logoutErr   error
	pingErr     error
	closed      bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{token: "tok", uploads: map[string]*api.UploadMeta{}, blobs: map[string][]byte{}}
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) Register(ctx context.Context, req *api.RegisterRequest) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = req
	return nil
}

func (f *fakeClient) GetWrappedKey(ctx context.Context, email string) (*api.WrappedKeyResponse, error) {
	if f.registered == nil || f.registered.Email != email {
		return nil, common.ErrorNotFound
	}
	r := f.registered
	return &api.WrappedKeyResponse{WrappedMasterKey: r.WrappedMasterKey, IV: r.IV, Salt: r.Salt}, nil
}

func (f *fakeClient) Login(ctx context.Context, email string, authKey []byte) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	f.loginKey = append([]byte(nil), authKey...)
	return f.token, nil
}

func (f *fakeClient) Logout(ctx context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return f.logoutErr
}

func (f *fakeClient) Upload(ctx context.Context, token string, meta *api.UploadMeta, blob []byte) (*api.UploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	name := string(rune('a'+f.seq-1)) + "0"
	f.uploads[name] = meta
	f.blobs[name] = append([]byte(nil), blob...)
	return &api.UploadResponse{StorageName: name}, nil
}

func (f *fakeClient) List(ctx context.Context, token string) ([]api.ArtifactMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.ArtifactMeta, 0, len(f.uploads))
	for name, m := range f.uploads {
		out = append(out, f.meta(name, m))
	}
	return out, nil
}

func (f *fakeClient) Meta(ctx context.Context, token, name string) (*api.ArtifactMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.uploads[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := f.meta(name, m)
	return &out, nil
}

func (f *fakeClient) Download(ctx context.Context, token, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return append([]byte(nil), b...), nil
}

func (f *fakeClient) Delete(ctx context.Context, token, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.uploads[name]; !ok {
		return common.ErrorNotFound
	}
	delete(f.uploads, name)
	delete(f.blobs, name)
	return nil
}

func (f *fakeClient) meta(name string, m *api.UploadMeta) api.ArtifactMeta {
	return api.ArtifactMeta{
		StorageName:       name,
		WrappedCEK:        m.WrappedCEK,
		WrapIV:            m.WrapIV,
		EncryptedFileName: m.EncryptedFileName,
		NameIV:            m.NameIV,
		Size:              int64(len(f.blobs[name])),
	}
}
