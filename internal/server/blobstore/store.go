// Package blobstore keeps encrypted file blobs, addressed by storage name.
// Blobs are opaque to the server: nonce followed by AEAD ciphertext.
package blobstore

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/common"
)

type Info struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
}

type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	// Get yields common.ErrorNotFound for a missing blob.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete is a no-op for a missing blob.
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Info, error)
}

// validName rejects names that could escape the store's namespace.
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) {
		return common.ErrorInvalidInput
	}
	return nil
}
