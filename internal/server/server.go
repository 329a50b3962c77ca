// Package server exposes a candidate index over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/kektorgraph/pkg/config"
	"github.com/sanonone/kektorgraph/pkg/engine"
)

// Server holds the HTTP interface and the index currently being served.
type Server struct {
	index atomic.Pointer[engine.Index]
	opts  engine.Options
	paths config.ServerConfig

	// ctx lives until Shutdown and bounds background rebuilds.
	ctx    context.Context
	cancel context.CancelFunc

	httpServer  *http.Server
	handler     http.Handler
	taskManager *TaskManager
	authToken   string
	rebuilding  atomic.Bool
}

// NewServer wraps idx, which may be nil until the first rebuild completes.
func NewServer(idx *engine.Index, opts engine.Options, cfg config.ServerConfig) *Server {
	s := &Server{
		opts:        opts,
		paths:       cfg,
		taskManager: NewTaskManager(),
		authToken:   cfg.AuthToken,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if idx != nil {
		s.index.Store(idx)
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Recovery -> Logging -> Auth -> Mux
	var handler http.Handler = mux
	handler = s.authMiddleware(handler)
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)

	s.handler = rootMux
	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           rootMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler { return s.handler }

// Index returns the index being served, or nil.
func (s *Server) Index() *engine.Index { return s.index.Load() }

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown cancels running rebuilds and stops the HTTP server, waiting up to
// five seconds for in-flight requests.
func (s *Server) Shutdown() {
	slog.Info("Starting graceful shutdown of HTTP server")
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
}
