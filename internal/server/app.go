// Package server wires the fileshare server together: configuration, the
// user store backend, the services and the HTTP server. It also owns signal
// handling and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/fileshare/internal/buildinfo"
	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/logging"
	"github.com/dmitrijs2005/fileshare/internal/server/config"
	"github.com/dmitrijs2005/fileshare/internal/server/httpserver"
	"github.com/dmitrijs2005/fileshare/internal/server/services"
	"github.com/dmitrijs2005/fileshare/internal/server/sessions"
)

const sessionSweepInterval = time.Minute

type App struct {
	config     *config.Config
	logger     logging.Logger
	sessions   *sessions.Store
	shares     *services.ShareRegistry
	httpServer *httpserver.HTTPServer
	closer     io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if c.SecretKey == "" {
		secret, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		c.SecretKey = secret
		logger.Warn(ctx, "secret_key is not set, using a random one; sessions will not survive a restart")
	}

	repo, closer, err := OpenUserRepository(ctx, c)
	if err != nil {
		return nil, err
	}

	as := services.NewAuthService(repo, common.BcryptCost)
	ss := sessions.NewStore()
	sr := services.NewShareRegistry()

	hs, err := httpserver.NewHTTPServer(httpserver.Options{
		Address:      c.ListenAddr,
		SecretKey:    c.SecretKey,
		SessionTTL:   c.SessionTTL,
		CookieSecure: c.CookieSecure,
		Version:      buildinfo.Version,
	}, logger, as, ss, services.NewDirectoryLister(), sr, services.NewFileResolver(c.BaseDirectory))
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	return &App{
		config:     c,
		logger:     logger,
		sessions:   ss,
		shares:     sr,
		httpServer: hs,
		closer:     closer,
	}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// sweepSessions drops expired sessions until ctx is done.
func (app *App) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.sessions.Sweep(); n > 0 {
				app.logger.Debug(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"address", app.config.ListenAddr,
		"base_directory", app.config.BaseDirectory,
		"storage", app.config.StorageType,
	)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweepSessions(ctx)
	}()

	wg.Wait()

	if err := app.closer.Close(); err != nil {
		app.logger.Error(ctx, "close user store", "error", err)
	}
	app.logger.Info(ctx, "Stopped", "active_shares", app.shares.Len())
}
