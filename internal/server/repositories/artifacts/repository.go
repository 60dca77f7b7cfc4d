// Package artifacts is the metadata and ownership store for uploaded files.
package artifacts

import (
	"context"

	"github.com/dmitrijs2005/securedrive/internal/server/models"
)

type Repository interface {
	// Put upserts by StorageName, replacing every field. It yields
	// common.ErrorForbidden if the existing record has another owner.
	Put(ctx context.Context, artifact *models.Artifact) error
	// Get yields common.ErrorNotFound when no record exists.
	Get(ctx context.Context, storageName string) (*models.Artifact, error)
	// ListByOwner never returns records of other owners.
	ListByOwner(ctx context.Context, owner string) ([]*models.Artifact, error)
	// Delete removes the record only if owner matches. It yields
	// common.ErrorNotFound or common.ErrorForbidden otherwise.
	Delete(ctx context.Context, storageName, owner string) error
	Exists(ctx context.Context, storageName string) (bool, error)
}
