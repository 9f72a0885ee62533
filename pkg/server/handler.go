package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/liveroom-dev/liveroom/pkg/room"
)

// Handler upgrades HTTP requests to WebSocket connections and binds each
// one to a room session.
type Handler struct {
	registry *room.Registry
	config   *Config
	logger   *slog.Logger
	metrics  *Metrics
	upgrader websocket.Upgrader
}

// NewHandler creates the WebSocket handler. metrics may be nil.
func NewHandler(registry *room.Registry, config *Config, logger *slog.Logger, metrics *Metrics) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry: registry,
		config:   config,
		logger:   logger,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
	}
}

// Routes mounts the handler's endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/live/{roomID}", h.ServeWS)
	r.Get("/live", h.ServeWS)
}

// ServeWS handles one WebSocket connection for the room named in the URL
// path, or in the room query parameter when the path has none. The
// connection is bound to the room's session for its whole lifetime; the
// room reference is released when the connection drops.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		roomID = r.URL.Query().Get("room")
	}
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	session, err := h.registry.Acquire(r.Context(), roomID)
	if err != nil {
		h.logger.Warn("acquire failed", "room_id", roomID, "error", err)
		http.Error(w, "room unavailable", http.StatusServiceUnavailable)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.registry.Release(roomID)
		h.logger.Warn("upgrade failed", "room_id", roomID, "error", err)
		return
	}

	if h.metrics != nil {
		h.metrics.ConnectionsTotal.Inc()
		h.metrics.ConnectionsActive.Inc()
	}

	conn := newConn(ws, session, h.config, h.logger, h.metrics)
	session.Attach(conn)

	go conn.writePump()
	conn.readPump(r.Context())

	session.Detach(conn)
	h.registry.Release(roomID)
	if h.metrics != nil {
		h.metrics.ConnectionsActive.Dec()
	}
}
