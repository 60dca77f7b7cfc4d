// Package identities persists registered users: their wrapped Master Key,
// KDF parameters and login verifier.
package identities

import (
	"context"

	"github.com/dmitrijs2005/securedrive/internal/server/models"
)

type Repository interface {
	// Create stores a new identity and fills CreatedAt. A duplicate email
	// yields common.ErrorConflict.
	Create(ctx context.Context, identity *models.Identity) error
	// GetByEmail yields common.ErrorNotFound for unknown emails.
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
}
