package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/dbx"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
)

const selectColumns = `storage_name, owner, wrapped_cek, cek_wrap_nonce, encrypted_name, name_nonce, size, uploaded_at`

// PostgresRepository needs the *sql.DB itself rather than a dbx.DBTX because
// Delete opens its own transaction.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Put(ctx context.Context, a *models.Artifact) error {
	query :=
		`INSERT INTO artifacts (storage_name, owner, wrapped_cek, cek_wrap_nonce, encrypted_name, name_nonce, size, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (storage_name) DO UPDATE
		 SET wrapped_cek = EXCLUDED.wrapped_cek,
		     cek_wrap_nonce = EXCLUDED.cek_wrap_nonce,
		     encrypted_name = EXCLUDED.encrypted_name,
		     name_nonce = EXCLUDED.name_nonce,
		     size = EXCLUDED.size,
		     uploaded_at = EXCLUDED.uploaded_at
		 WHERE artifacts.owner = EXCLUDED.owner
		 `

	res, err := r.db.ExecContext(ctx, query,
		a.StorageName, a.Owner, a.WrappedCEK, a.CEKWrapNonce, a.EncryptedName, a.NameNonce, a.Size, a.UploadedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		// the WHERE clause rejected the update: the name belongs to someone else
		return common.ErrorForbidden
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, storageName string) (*models.Artifact, error) {
	query := `SELECT ` + selectColumns + ` FROM artifacts WHERE storage_name = $1`

	a, err := scanArtifact(r.db.QueryRowContext(ctx, query, storageName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Artifact, error) {
	query := `SELECT ` + selectColumns + ` FROM artifacts WHERE owner = $1 ORDER BY uploaded_at, storage_name`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Artifact, 0)
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Delete locks the row, checks the owner and removes it in one transaction,
// so a concurrent Put cannot slip in between the check and the delete.
func (r *PostgresRepository) Delete(ctx context.Context, storageName, owner string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT owner FROM artifacts WHERE storage_name = $1 FOR UPDATE`, storageName).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		if current != owner {
			return common.ErrorForbidden
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM artifacts WHERE storage_name = $1`, storageName); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) Exists(ctx context.Context, storageName string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM artifacts WHERE storage_name = $1)`, storageName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row scanner) (*models.Artifact, error) {
	a := &models.Artifact{}
	err := row.Scan(&a.StorageName, &a.Owner, &a.WrappedCEK, &a.CEKWrapNonce,
		&a.EncryptedName, &a.NameNonce, &a.Size, &a.UploadedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
