package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/rx3lixir/ambient/internal/db"
	"github.com/rx3lixir/ambient/internal/generator"
	"github.com/rx3lixir/ambient/internal/publish"
	"github.com/rx3lixir/ambient/pkg/jwt"
)

// RenderCache stores encoded renders between requests
type RenderCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Pinger is any dependency the health check can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups what the server needs. Cache, Catalog and Publisher are
// optional; leave them nil when the backing service is not configured.
type Deps struct {
	Presets   []generator.Preset
	Seed      uint64
	Cache     RenderCache
	Catalog   db.AssetStore
	Publisher *publish.Publisher
	Tokens    *jwt.Service
	Health    map[string]Pinger
}

type Server struct {
	presets   []generator.Preset
	seed      uint64
	cache     RenderCache
	catalog   db.AssetStore
	publisher *publish.Publisher
	tokens    *jwt.Service
	health    map[string]Pinger
	log       *log.Logger
	router    *chi.Mux
	httpSrv   *http.Server
}

func New(addr string, deps Deps, log *log.Logger) *Server {
	s := &Server{
		presets:   deps.Presets,
		seed:      deps.Seed,
		cache:     deps.Cache,
		catalog:   deps.Catalog,
		publisher: deps.Publisher,
		tokens:    deps.Tokens,
		health:    deps.Health,
		log:       log,
	}

	s.router = s.setupRoutes()
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves until Shutdown is called
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpSrv.Addr, err)
	}

	s.log.Info("HTTP server started", "address", ln.Addr().String())

	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
