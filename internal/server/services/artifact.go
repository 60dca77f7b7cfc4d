package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/cryptox"
	"github.com/dmitrijs2005/securedrive/internal/logging"
	"github.com/dmitrijs2005/securedrive/internal/server/blobstore"
	"github.com/dmitrijs2005/securedrive/internal/server/keylock"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
	"github.com/dmitrijs2005/securedrive/internal/server/repositories/artifacts"
)

// StorageNameBytes is the randomness in a storage name; the hex form is
// twice as long.
const StorageNameBytes = 16

// UploadInput is everything the client sends for one file. The blob is
// fileNonce||ciphertext||tag.
type UploadInput struct {
	Blob          []byte
	WrappedCEK    []byte
	CEKWrapNonce  []byte
	EncryptedName []byte
	NameNonce     []byte
}

func (in *UploadInput) validate() error {
	if in == nil ||
		len(in.Blob) < cryptox.NonceSize+cryptox.TagSize ||
		len(in.WrappedCEK) != cryptox.WrappedKeySize ||
		len(in.CEKWrapNonce) != cryptox.NonceSize ||
		len(in.EncryptedName) < cryptox.TagSize ||
		len(in.NameNonce) != cryptox.NonceSize {
		return common.ErrorInvalidInput
	}
	return nil
}

// ArtifactService binds encrypted blobs to their owner. owner is always the
// identity resolved from the caller's session.
type ArtifactService struct {
	artifacts artifacts.Repository
	blobs     blobstore.Store
	locks     *keylock.Locker
	log       logging.Logger
	now       func() time.Time
	newName   func() (string, error)
}

// NewArtifactService shares locks with the orphan collector so a sweep never
// races an upload of the same name.
func NewArtifactService(repo artifacts.Repository, blobs blobstore.Store, locks *keylock.Locker, log logging.Logger) *ArtifactService {
	return &ArtifactService{
		artifacts: repo,
		blobs:     blobs,
		locks:     locks,
		log:       log,
		now:       time.Now,
		newName:   NewStorageName,
	}
}

// NewStorageName returns a fresh random blob name. It carries no
// information about the owner or the file.
func NewStorageName() (string, error) {
	return common.MakeRandHexString(StorageNameBytes)
}

// ValidStorageName reports whether name has the shape NewStorageName
// produces: 32 lowercase hex characters.
func ValidStorageName(name string) bool {
	if len(name) != 2*StorageNameBytes {
		return false
	}
	for _, c := range name {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Upload writes the blob and then records its metadata. If the metadata write
// fails the blob is removed again; a crash in between leaves an orphan blob
// for the collector.
func (s *ArtifactService) Upload(ctx context.Context, owner string, in *UploadInput) (*models.Artifact, error) {
	if owner == "" {
		return nil, common.ErrorUnauthorized
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	name, err := s.newName()
	if err != nil {
		return nil, fmt.Errorf("storage name error: %w", err)
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	if err := s.blobs.Put(ctx, name, in.Blob); err != nil {
		return nil, fmt.Errorf("error storing blob: %w", err)
	}

	artifact := &models.Artifact{
		StorageName:   name,
		Owner:         owner,
		WrappedCEK:    in.WrappedCEK,
		CEKWrapNonce:  in.CEKWrapNonce,
		EncryptedName: in.EncryptedName,
		NameNonce:     in.NameNonce,
		Size:          int64(len(in.Blob)),
		UploadedAt:    s.now().UTC(),
	}

	if err := s.artifacts.Put(ctx, artifact); err != nil {
		if derr := s.blobs.Delete(ctx, name); derr != nil {
			s.log.Warn(ctx, "blob rollback failed", "storage_name", name, "error", derr)
		}
		if errors.Is(err, common.ErrorForbidden) {
			return nil, common.ErrorForbidden
		}
		return nil, fmt.Errorf("error recording artifact: %w", err)
	}

	s.log.Info(ctx, "artifact stored", "storage_name", name, "owner", owner, "size", artifact.Size)
	return artifact, nil
}

// Get returns the metadata if owner holds it. Records of other owners yield
// common.ErrorForbidden.
func (s *ArtifactService) Get(ctx context.Context, owner, name string) (*models.Artifact, error) {
	if owner == "" {
		return nil, common.ErrorUnauthorized
	}
	if !ValidStorageName(name) {
		return nil, common.ErrorInvalidInput
	}

	artifact, err := s.artifacts.Get(ctx, name)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error loading artifact: %w", err)
	}

	if artifact.Owner != owner {
		s.log.Warn(ctx, "foreign artifact access", "storage_name", name, "caller", owner)
		return nil, common.ErrorForbidden
	}
	return artifact, nil
}

func (s *ArtifactService) List(ctx context.Context, owner string) ([]*models.Artifact, error) {
	if owner == "" {
		return nil, common.ErrorUnauthorized
	}
	list, err := s.artifacts.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("error listing artifacts: %w", err)
	}
	return list, nil
}

// Download checks ownership before reading the blob. Metadata without a
// blob reads as common.ErrorNotFound.
func (s *ArtifactService) Download(ctx context.Context, owner, name string) (*models.Artifact, []byte, error) {
	artifact, err := s.Get(ctx, owner, name)
	if err != nil {
		return nil, nil, err
	}

	blob, err := s.blobs.Get(ctx, name)
	if errors.Is(err, common.ErrorNotFound) {
		s.log.Warn(ctx, "artifact blob missing", "storage_name", name)
		return nil, nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("error reading blob: %w", err)
	}
	return artifact, blob, nil
}

// Delete removes the metadata and then the blob. A failed blob delete is
// only logged: without metadata the blob is an orphan and gets collected.
func (s *ArtifactService) Delete(ctx context.Context, owner, name string) error {
	if owner == "" {
		return common.ErrorUnauthorized
	}
	if !ValidStorageName(name) {
		return common.ErrorInvalidInput
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	if err := s.artifacts.Delete(ctx, name, owner); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorNotFound
		case errors.Is(err, common.ErrorForbidden):
			s.log.Warn(ctx, "foreign artifact delete", "storage_name", name, "caller", owner)
			return common.ErrorForbidden
		}
		return fmt.Errorf("error deleting artifact: %w", err)
	}

	if err := s.blobs.Delete(ctx, name); err != nil {
		s.log.Warn(ctx, "blob delete failed", "storage_name", name, "error", err)
	}

	s.log.Info(ctx, "artifact deleted", "storage_name", name, "owner", owner)
	return nil
}
