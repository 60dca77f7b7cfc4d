package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/client/client"
	"github.com/dmitrijs2005/securedrive/internal/client/config"
	"github.com/dmitrijs2005/securedrive/internal/client/services"
	"github.com/dmitrijs2005/securedrive/internal/client/session"
	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/logging"
)

const statusCheckInterval = 15 * time.Second

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService services.AuthService
	fileService services.FileService
	reader      *bufio.Reader
	out         io.Writer

	mu      sync.RWMutex
	session *session.Session
	mode    Mode
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{
		config:      c,
		logger:      logger,
		authService: services.NewAuthService(apiClient),
		fileService: services.NewFileService(apiClient, c.DownloadDir),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run blocks in the REPL until the user exits or ctx is cancelled. Any
// open session is ended on the way out.
func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.authService.Close(context.Background())
	}()
	defer a.endSession(context.Background())

	printlnFn(headerColor("SecureDrive CLI (type 'help' for commands)"))

	a.checkServer(ctx)
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, statusCheckInterval)

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.Active()
}

func (a *App) currentSession() *session.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

func (a *App) setSession(s *session.Session) {
	a.mu.Lock()
	old := a.session
	a.session = s
	a.mu.Unlock()
	if old != nil && old != s {
		old.Close()
	}
}

// endSession logs out on the server and destroys the local key.
func (a *App) endSession(ctx context.Context) {
	s := a.currentSession()
	if s == nil {
		return
	}
	if err := a.authService.Logout(ctx, s); err != nil {
		a.logger.Debug(ctx, "server logout failed", "error", err)
	}
	a.setSession(nil)
}

func (a *App) status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := ""
	if a.session.Active() {
		s = a.session.Email() + " "
	}
	s += string(a.mode)
	return s
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Warn(context.Background(), "server status changed", "mode", string(mode))
	}
}

func (a *App) checkServer(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.authService.Ping(pingCtx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// prompt between online and offline until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkServer(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// report logs the precise failure and shows the user a short message.
func (a *App) report(ctx context.Context, cmd string, err error) {
	a.logger.Debug(ctx, "command failed", "command", cmd, "error", err)
	if errors.Is(err, common.ErrorUnauthorized) && a.isLoggedIn() {
		// the server forgot the session; the local key goes with it
		a.setSession(nil)
		printlnFn(errorColor("session expired, please log in again"))
		return
	}
	printlnFn(errorColor(describeError(err)))
}
