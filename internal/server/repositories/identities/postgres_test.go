package identities

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+identities\s*\(email,\s*wrapped_master_key,\s*master_key_wrap_nonce,\s*kdf_salt,\s*auth_verifier\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at\s*$`
	selectQuery = `(?s)^SELECT\s+email,\s*wrapped_master_key,\s*master_key_wrap_nonce,\s*kdf_salt,\s*auth_verifier,\s*created_at\s+FROM\s+identities\s+WHERE\s+email\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func sampleIdentity() *models.Identity {
	return &models.Identity{
		Email:              "alice@example.com",
		WrappedMasterKey:   []byte("wrapped"),
		MasterKeyWrapNonce: []byte("nonce"),
		KDFSalt:            []byte("salt"),
		AuthVerifier:       []byte("verifier"),
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice@example.com", []byte("wrapped"), []byte("nonce"), []byte("salt"), []byte("verifier")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	identity := sampleIdentity()
	require.NoError(t, repo.Create(context.Background(), identity))
	assert.Equal(t, created, identity.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "identities_pkey"})

	err := repo.Create(context.Background(), sampleIdentity())
	require.ErrorIs(t, err, common.ErrorConflict)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), sampleIdentity())
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(selectQuery).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"email", "wrapped_master_key", "master_key_wrap_nonce", "kdf_salt", "auth_verifier", "created_at"}).
			AddRow("alice@example.com", []byte("wrapped"), []byte("nonce"), []byte("salt"), []byte("verifier"), created))

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)

	want := sampleIdentity()
	want.CreatedAt = created
	assert.Equal(t, want, got)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByEmail_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("alice@example.com").WillReturnError(errors.New("db err"))

	_, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db err`, err.Error())
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
