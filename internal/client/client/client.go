package client

import (
	"context"

	"github.com/dmitrijs2005/securedrive/internal/api"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, req *api.RegisterRequest) error
	GetWrappedKey(ctx context.Context, email string) (*api.WrappedKeyResponse, error)
	Login(ctx context.Context, email string, authKey []byte) (string, error)
	Logout(ctx context.Context, token string) error
	Upload(ctx context.Context, token string, meta *api.UploadMeta, blob []byte) (*api.UploadResponse, error)
	List(ctx context.Context, token string) ([]api.ArtifactMeta, error)
	Meta(ctx context.Context, token, name string) (*api.ArtifactMeta, error)
	Download(ctx context.Context, token, name string) ([]byte, error)
	Delete(ctx context.Context, token, name string) error
}
