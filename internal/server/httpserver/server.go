// Package httpserver exposes the fileshare services over HTTP: the login
// form, the authenticated directory browser and the public share links.
package httpserver

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fileshare/internal/logging"
	"github.com/dmitrijs2005/fileshare/internal/server/services"
	"github.com/dmitrijs2005/fileshare/internal/server/sessions"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"
)

//go:embed web
var webFS embed.FS

const (
	formSizeLimit   = 64 * 1024
	shutdownTimeout = 5 * time.Second
)

// Options carries the transport settings of HTTPServer.
type Options struct {
	Address      string
	SecretKey    string
	SessionTTL   time.Duration
	CookieSecure bool
	Version      string
}

type HTTPServer struct {
	opts      Options
	logger    logging.Logger
	auth      *services.AuthService
	sessions  *sessions.Store
	lister    *services.DirectoryLister
	shares    *services.ShareRegistry
	files     *services.FileResolver
	jwtSecret []byte
	listing   *template.Template
	web       fs.FS
}

func NewHTTPServer(o Options, l logging.Logger, as *services.AuthService, ss *sessions.Store,
	dl *services.DirectoryLister, sr *services.ShareRegistry, fr *services.FileResolver) (*HTTPServer, error) {

	web, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, fmt.Errorf("web assets: %w", err)
	}

	listing, err := template.ParseFS(web, "listing.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing template: %w", err)
	}

	return &HTTPServer{
		opts:      o,
		logger:    l.With("module", "http_server"),
		auth:      as,
		sessions:  ss,
		lister:    dl,
		shares:    sr,
		files:     fr,
		jwtSecret: []byte(o.SecretKey),
		listing:   listing,
		web:       web,
	}, nil
}

// Handler builds the routing tree.
func (s *HTTPServer) Handler() http.Handler {
	router := routegroup.New(http.NewServeMux())

	router.HandleFunc("GET /style.css", s.handleStyle)

	public := router.Group()
	public.Use(rest.SizeLimit(formSizeLimit), s.loadSession)
	public.HandleFunc("GET /login", s.handleLoginPage)
	public.HandleFunc("POST /login", s.handleLogin)
	public.HandleFunc("GET /logout", s.handleLogout)
	public.HandleFunc("GET /shared/{id}", s.handleShared)

	private := router.Group()
	private.Use(rest.SizeLimit(formSizeLimit), s.loadSession, s.requireAuthenticated)
	private.HandleFunc("GET /{$}", s.handleList)
	private.HandleFunc("POST /register", s.handleRegister)
	private.HandleFunc("GET /view/{filename...}", s.handleView)
	private.HandleFunc("GET /share/{filename...}", s.handleShare)

	return rest.Wrap(router,
		rest.Recoverer(recoverLogger{s.logger}),
		rest.RealIP,
		s.accessLog,
		rest.AppInfo("fileshare", "dmitrijs2005", s.opts.Version),
		rest.Ping,
	)
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
