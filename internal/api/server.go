// Package api serves import, export and table listings over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/OscarFredriksson/tire-logger/internal/store"
	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

// maxImportBytes bounds the size of an uploaded import document.
const maxImportBytes = 32 << 20

// Config configures a Server.
type Config struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	// DefaultMode applies when an import request names no mode.
	DefaultMode transfer.Mode
}

// Server is the HTTP front end of one store.
type Server struct {
	cfg      Config
	store    *store.Store
	importer *transfer.Importer
	exporter *transfer.Exporter
	router   *chi.Mux
	now      func() time.Time

	// importing admits one import at a time; others get 409.
	importing sync.Mutex
}

// NewServer wires routes and middleware.
func NewServer(cfg Config, s *store.Store, im *transfer.Importer, ex *transfer.Exporter) *Server {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = transfer.ModeMerge
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	srv := &Server{
		cfg:      cfg,
		store:    s,
		importer: im,
		exporter: ex,
		router:   chi.NewRouter(),
		now:      time.Now,
	}
	srv.setupMiddleware()
	srv.setupRoutes()
	return srv
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleListTables)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})
}

// Handler returns the router wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Import-ID"},
	})
	return c.Handler(s.router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", ln.Addr().String())
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
