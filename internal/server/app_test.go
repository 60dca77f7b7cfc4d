package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/logging"
	"github.com/dmitrijs2005/securedrive/internal/server/blobstore"
	"github.com/dmitrijs2005/securedrive/internal/server/config"
	"github.com/dmitrijs2005/securedrive/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

// warnRecorder keeps warning messages and drops everything else.
type warnRecorder struct {
	nopLogger
	warnings *[]string
}

func (w warnRecorder) Warn(_ context.Context, msg string, _ ...any) {
	*w.warnings = append(*w.warnings, msg)
}

func (w warnRecorder) With(...any) logging.Logger { return w }

// trackingManager is an in-memory manager that records lifecycle calls.
type trackingManager struct {
	*repomanager.MemoryRepositoryManager
	migrateErr error
	migrated   bool
	closed     bool
}

func (m *trackingManager) RunMigrations(ctx context.Context) error {
	m.migrated = true
	return m.migrateErr
}

func (m *trackingManager) Close() error {
	m.closed = true
	return nil
}

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddr = "127.0.0.1:0"
	c.MetadataBackend = config.BackendMemory
	c.BlobBackend = config.BackendMemory
	return c
}

func stubPostgres(t *testing.T, m *trackingManager, err error) {
	t.Helper()
	orig := newPostgresManager
	t.Cleanup(func() { newPostgresManager = orig })
	newPostgresManager = func(dsn string) (repomanager.RepositoryManager, error) {
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func TestNewApp_MemoryBackends(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), nopLogger{})
	require.NoError(t, err)

	assert.IsType(t, &repomanager.MemoryRepositoryManager{}, app.repos)
	assert.IsType(t, &blobstore.MemoryStore{}, app.blobs)
	assert.NotNil(t, app.server)
	assert.NotNil(t, app.collector)
}

func TestNewApp_FSBackend(t *testing.T) {
	c := memoryConfig()
	c.BlobBackend = config.BackendFS
	c.BlobDir = t.TempDir()

	app, err := NewApp(context.Background(), c, nopLogger{})
	require.NoError(t, err)

	fs, ok := app.blobs.(*blobstore.FSStore)
	require.True(t, ok)
	assert.Equal(t, c.BlobDir, fs.Dir())
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := memoryConfig()
	c.BlobBackend = "tape"

	_, err := NewApp(context.Background(), c, nopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestNewApp_Postgres(t *testing.T) {
	m := &trackingManager{MemoryRepositoryManager: repomanager.NewMemoryRepositoryManager()}
	stubPostgres(t, m, nil)

	c := memoryConfig()
	c.MetadataBackend = config.BackendPostgres

	app, err := NewApp(context.Background(), c, nopLogger{})
	require.NoError(t, err)
	assert.Same(t, m, app.repos)
	assert.True(t, m.migrated)
}

func TestNewApp_PostgresErrors(t *testing.T) {
	c := memoryConfig()
	c.MetadataBackend = config.BackendPostgres

	stubPostgres(t, nil, errors.New("dial failed"))
	_, err := NewApp(context.Background(), c, nopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial failed")

	m := &trackingManager{MemoryRepositoryManager: repomanager.NewMemoryRepositoryManager(), migrateErr: errors.New("bad migration")}
	stubPostgres(t, m, nil)
	_, err = NewApp(context.Background(), c, nopLogger{})
	require.Error(t, err)
	assert.True(t, m.closed)
}

func TestNewApp_S3Error(t *testing.T) {
	orig := newS3Store
	t.Cleanup(func() { newS3Store = orig })
	newS3Store = func(ctx context.Context, opts blobstore.S3Options) (*blobstore.S3Store, error) {
		assert.Equal(t, "securedrive", opts.Bucket)
		assert.Equal(t, "admin", opts.AccessKey)
		return nil, errors.New("no credentials")
	}

	m := &trackingManager{MemoryRepositoryManager: repomanager.NewMemoryRepositoryManager()}
	stubPostgres(t, m, nil)

	c := memoryConfig()
	c.MetadataBackend = config.BackendPostgres
	c.BlobBackend = config.BackendS3

	_, err := NewApp(context.Background(), c, nopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")
	assert.True(t, m.closed)
}

func TestApp_RunStopsOnCancelAndClosesRepos(t *testing.T) {
	m := &trackingManager{MemoryRepositoryManager: repomanager.NewMemoryRepositoryManager()}
	stubPostgres(t, m, nil)

	c := memoryConfig()
	c.MetadataBackend = config.BackendPostgres
	c.SessionValidityDuration = time.Minute

	app, err := NewApp(context.Background(), c, nopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, m.closed)
}

func TestApp_RunReturnsServerError(t *testing.T) {
	c := memoryConfig()
	c.EndpointAddr = "256.0.0.1:bad"

	app, err := NewApp(context.Background(), c, nopLogger{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestNewApp_WarnsAboutDefaultSecret(t *testing.T) {
	var warnings []string
	logger := warnRecorder{warnings: &warnings}

	c := memoryConfig()
	require.True(t, c.UsesDefaultSecret())
	_, err := NewApp(context.Background(), c, logger)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "default secret key")

	warnings = nil
	c = memoryConfig()
	c.SecretKey = "a-real-deployment-secret"
	_, err = NewApp(context.Background(), c, logger)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
