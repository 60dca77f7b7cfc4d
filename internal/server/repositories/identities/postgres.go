package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/dbx"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) error {
	query :=
		`INSERT INTO identities (email, wrapped_master_key, master_key_wrap_nonce, kdf_salt, auth_verifier)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		identity.Email, identity.WrappedMasterKey, identity.MasterKeyWrapNonce, identity.KDFSalt, identity.AuthVerifier,
	).Scan(&identity.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query :=
		`SELECT email, wrapped_master_key, master_key_wrap_nonce, kdf_salt, auth_verifier, created_at
		 FROM identities
		 WHERE email = $1
		 `

	identity := &models.Identity{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&identity.Email, &identity.WrappedMasterKey, &identity.MasterKeyWrapNonce,
		&identity.KDFSalt, &identity.AuthVerifier, &identity.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}
