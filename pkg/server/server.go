package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liveroom-dev/liveroom/pkg/room"
)

// Server ties the WebSocket handler, the room registry, and the HTTP
// server together.
type Server struct {
	config   *Config
	logger   *slog.Logger
	registry *room.Registry
	handler  *Handler
	metrics  *Metrics
	promReg  *prometheus.Registry
	router   chi.Router
	httpSrv  *http.Server
}

// New creates a server around an existing registry.
func New(registry *room.Registry, config *Config, logger *slog.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	promReg := prometheus.NewRegistry()
	metrics := NewMetrics(promReg, registry.Len)

	s := &Server{
		config:   config,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
		promReg:  promReg,
	}
	s.handler = NewHandler(registry, config, logger, metrics)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	s.handler.Routes(r)
	r.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	s.router = r

	s.httpSrv = &http.Server{
		Addr:         config.Addr,
		Handler:      r,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Router returns the chi router so callers can mount additional routes
// before Start.
func (s *Server) Router() chi.Router {
	return s.router
}

// Registry returns the room registry.
func (s *Server) Registry() *room.Registry {
	return s.registry
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.config.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and shuts down the registry,
// draining in-flight actions.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return err
	}
	return s.registry.Shutdown(ctx)
}
