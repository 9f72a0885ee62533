// Package liveroom keeps server-side component state synchronized with
// browser views over WebSockets. Components render a markup tree; user
// actions mutate component state on the server; the engine diffs
// consecutive renders and streams minimal patches to every connection
// bound to the room.
package liveroom

import (
	"context"
	"log/slog"

	"github.com/liveroom-dev/liveroom/pkg/live"
	"github.com/liveroom-dev/liveroom/pkg/room"
	"github.com/liveroom-dev/liveroom/pkg/server"
)

// App wires a room registry and a WebSocket server around a component
// factory.
type App struct {
	registry *room.Registry
	server   *server.Server
	logger   *slog.Logger
}

// Option customizes an App.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	roomConfig *room.Config
	srvConfig  *server.Config
	middleware []live.Middleware
}

// WithLogger sets the logger used throughout the app.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRoomConfig sets the registry configuration.
func WithRoomConfig(cfg *room.Config) Option {
	return func(o *options) { o.roomConfig = cfg }
}

// WithServerConfig sets the WebSocket server configuration.
func WithServerConfig(cfg *server.Config) Option {
	return func(o *options) { o.srvConfig = cfg }
}

// WithMiddleware appends action middleware applied to every session.
func WithMiddleware(mw ...live.Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mw...) }
}

// New creates an App that builds a session per room using factory.
func New(factory room.Factory, opts ...Option) *App {
	o := &options{
		logger:     slog.Default(),
		roomConfig: room.DefaultConfig(),
		srvConfig:  server.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.roomConfig.Session == nil {
		o.roomConfig.Session = live.DefaultConfig()
	}
	o.roomConfig.Session = o.roomConfig.Session.WithMiddleware(o.middleware...)

	registry := room.NewRegistry(factory, o.roomConfig, o.logger)
	srv := server.New(registry, o.srvConfig, o.logger)
	return &App{
		registry: registry,
		server:   srv,
		logger:   o.logger,
	}
}

// Registry returns the room registry.
func (a *App) Registry() *room.Registry {
	return a.registry
}

// Server returns the underlying WebSocket server.
func (a *App) Server() *server.Server {
	return a.server
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops the server and drains every live session.
func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
