// Package web serves the dataset directory over HTTP, with a page showing
// the heritage distribution of the names in the store.
package web

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/Eigenbraid/Dice/internal/config"
	"github.com/Eigenbraid/Dice/internal/heritage"
	weblog "github.com/Eigenbraid/Dice/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func init() {
	// Fixed types for scripts and stylesheets, whatever the host's MIME table says.
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
}

// StatsSource reports the heritage distribution of the stored names.
type StatsSource interface {
	HeritageStats(ctx context.Context) ([]heritage.HeritageCount, error)
}

// Server is the static file server.
type Server struct {
	cfg    config.ServerConfig
	stats  StatsSource
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server. stats may be nil, which disables /stats.
func NewServer(cfg config.ServerConfig, stats StatsSource) *Server {
	s := &Server{
		cfg:    cfg,
		stats:  stats,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.stats != nil {
		s.router.Get("/stats", s.handleStats)
	}

	root := s.cfg.Root
	if root == "" {
		root = "."
	}
	s.router.Handle("/*", http.FileServer(http.Dir(root)))
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:     s.router,
		ReadTimeout: s.cfg.ReadTimeout,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "url", "http://"+ln.Addr().String()+"/", "root", s.cfg.Root)
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	slog.Info("shutting down server")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
