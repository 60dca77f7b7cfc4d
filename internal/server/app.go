// Package server wires the SecureDrive server together: it selects the
// metadata and blob backends from config, builds the services and the HTTP
// API, runs the background collectors and shuts everything down on signal.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/logging"
	"github.com/dmitrijs2005/securedrive/internal/server/blobstore"
	"github.com/dmitrijs2005/securedrive/internal/server/config"
	"github.com/dmitrijs2005/securedrive/internal/server/httpapi"
	"github.com/dmitrijs2005/securedrive/internal/server/keylock"
	"github.com/dmitrijs2005/securedrive/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securedrive/internal/server/services"
	"github.com/dmitrijs2005/securedrive/internal/server/sessions"
)

const sessionSweepInterval = time.Minute

var (
	newPostgresManager = func(dsn string) (repomanager.RepositoryManager, error) {
		return repomanager.NewPostgresRepositoryManager(dsn)
	}
	newS3Store = blobstore.NewS3Store
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	repos     repomanager.RepositoryManager
	blobs     blobstore.Store
	sessions  *sessions.MemoryStore
	collector *services.OrphanCollector
	server    *httpapi.HTTPServer
}

// NewApp builds every component the configuration selects and runs the
// metadata migrations. Nothing is served until Run.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if c.UsesDefaultSecret() {
		logger.Warn(ctx, "default secret key in use, unknown emails can be told apart from registered ones; set -s or secret_key")
	}

	repos, err := newRepositoryManager(c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, err
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	store := sessions.NewMemoryStore(c.SessionValidityDuration)
	locks := keylock.New()

	ids := services.NewIdentityService(repos.Identities(), store, c.SecretKey, logger.With("module", "identity_service"))
	arts := services.NewArtifactService(repos.Artifacts(), blobs, locks, logger.With("module", "artifact_service"))
	collector := services.NewOrphanCollector(repos.Artifacts(), blobs, locks, c.GCGrace, logger.With("module", "orphan_collector"))

	return &App{
		config:    c,
		logger:    logger,
		repos:     repos,
		blobs:     blobs,
		sessions:  store,
		collector: collector,
		server:    httpapi.NewHTTPServer(c.EndpointAddr, logger, ids, arts, c.MaxUploadBytes()),
	}, nil
}

func newRepositoryManager(c *config.Config) (repomanager.RepositoryManager, error) {
	if c.MetadataBackend == config.BackendMemory {
		return repomanager.NewMemoryRepositoryManager(), nil
	}
	return newPostgresManager(c.DatabaseDSN)
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.BlobBackend {
	case config.BackendMemory:
		return blobstore.NewMemoryStore(), nil
	case config.BackendFS:
		return blobstore.NewFSStore(c.BlobDir)
	}

	s, err := newS3Store(ctx, blobstore.S3Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		Prefix:       "blobs/",
	})
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) runSessionSweeper(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.sessions.Sweep(ctx); n > 0 {
				app.logger.Debug(ctx, "expired sessions dropped", "count", n)
			}
		}
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// HTTP server fails. The metadata store is closed on the way out.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"metadata_backend", app.config.MetadataBackend,
		"blob_backend", app.config.BlobBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	var serverErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		serverErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.collector.Run(ctx, app.config.GCInterval)
	}()

	if app.config.SessionValidityDuration > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runSessionSweeper(ctx)
		}()
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return serverErr
}
