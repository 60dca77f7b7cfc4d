// Package httpapi exposes the SecureDrive services over HTTP/JSON using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/cryptox"
	"github.com/dmitrijs2005/securedrive/internal/logging"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
	"github.com/dmitrijs2005/securedrive/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// IdentityService is the part of services.IdentityService the handlers use.
type IdentityService interface {
	Register(ctx context.Context, email string, wrapped *cryptox.WrappedKey, verifier []byte) (*models.Identity, error)
	GetWrappedKey(ctx context.Context, email string) (*cryptox.WrappedKey, error)
	Login(ctx context.Context, email string, authKey []byte) (string, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}

// ArtifactService is the part of services.ArtifactService the handlers use.
type ArtifactService interface {
	Upload(ctx context.Context, owner string, in *services.UploadInput) (*models.Artifact, error)
	Get(ctx context.Context, owner, name string) (*models.Artifact, error)
	List(ctx context.Context, owner string) ([]*models.Artifact, error)
	Download(ctx context.Context, owner, name string) (*models.Artifact, []byte, error)
	Delete(ctx context.Context, owner, name string) error
}

// HTTPServer serves the JSON API on address.
type HTTPServer struct {
	address        string
	identities     IdentityService
	artifacts      ArtifactService
	logger         logging.Logger
	maxUploadBytes int64
	router         *gin.Engine
}

// NewHTTPServer builds the router. Uploads larger than maxUploadBytes are
// rejected before they are decoded.
func NewHTTPServer(address string, l logging.Logger, ids IdentityService, arts ArtifactService, maxUploadBytes int64) *HTTPServer {
	s := &HTTPServer{
		address:        address,
		identities:     ids,
		artifacts:      arts,
		logger:         l.With("module", "http_server"),
		maxUploadBytes: maxUploadBytes,
	}
	s.router = s.newRouter()
	return s
}

func (s *HTTPServer) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.NoRoute(func(c *gin.Context) {
		s.abortWithStatus(c, http.StatusNotFound)
	})

	r.GET("/", s.handleBanner)

	api := r.Group("/api")
	api.GET("/ping", s.handlePing)
	api.POST("/register", s.handleRegister)
	api.POST("/get-wrapped-key", s.handleGetWrappedKey)
	api.POST("/login", s.handleLogin)

	authed := api.Group("", s.authRequired())
	authed.POST("/logout", s.handleLogout)
	authed.POST("/upload", s.handleUpload)
	authed.GET("/files", s.handleList)
	authed.GET("/meta/:name", s.handleMeta)
	authed.GET("/download/:name", s.handleDownload)
	authed.DELETE("/delete/:name", s.handleDelete)

	return r
}

// Handler returns the routed gin engine, mainly for httptest.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
