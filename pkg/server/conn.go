package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/liveroom-dev/liveroom/pkg/diff"
	"github.com/liveroom-dev/liveroom/pkg/live"
	"github.com/liveroom-dev/liveroom/pkg/protocol"
)

// Conn is one WebSocket connection bound to a room. It implements
// live.Subscriber: the session hands it frames which are queued on a
// bounded buffer and written by the write pump. When the buffer overflows
// the connection falls into resync mode, patch frames are dropped, and the
// write pump requests a fresh full render from the session.
type Conn struct {
	ws      *websocket.Conn
	session *live.Session
	config  *Config
	logger  *slog.Logger
	metrics *Metrics

	out        chan []byte
	needResync atomic.Bool
	resyncCh   chan struct{}

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(ws *websocket.Conn, session *live.Session, config *Config, logger *slog.Logger, metrics *Metrics) *Conn {
	return &Conn{
		ws:       ws,
		session:  session,
		config:   config,
		logger:   logger.With("room_id", session.RoomID, "remote", ws.RemoteAddr().String()),
		metrics:  metrics,
		out:      make(chan []byte, config.SendBufferSize),
		resyncCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// SendRender queues a full render frame. A render establishes a fresh
// baseline, so it also clears resync mode.
func (c *Conn) SendRender(sequence uint64, html string) error {
	data, err := protocol.EncodeRender(sequence, html)
	if err != nil {
		return err
	}
	if c.enqueue(data) {
		c.needResync.Store(false)
		c.countFrame(protocol.KindRender)
	}
	return nil
}

// SendPatch queues a patch frame. Patches are dropped while the connection
// is waiting for a resync: applying a patch to a stale baseline would
// corrupt the client tree.
func (c *Conn) SendPatch(from, to uint64, ops []diff.Op) error {
	if c.needResync.Load() {
		return nil
	}
	data, err := protocol.EncodePatch(from, to, ops)
	if err != nil {
		return err
	}
	if c.enqueue(data) {
		c.countFrame(protocol.KindPatch)
	}
	return nil
}

// SendNotice queues a notice frame. Notices lost to overflow are not
// replayed; the resync restores the tree, not the transient messages.
func (c *Conn) SendNotice(payload any) error {
	data, err := protocol.EncodeNotice(payload)
	if err != nil {
		return err
	}
	if c.enqueue(data) {
		c.countFrame(protocol.KindNotice)
	}
	return nil
}

// enqueue tries to queue a frame without blocking. On overflow it flips
// the connection into resync mode and wakes the write pump.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- data:
		return true
	default:
		if !c.needResync.Swap(true) {
			if c.metrics != nil {
				c.metrics.ResyncsTotal.Inc()
			}
			c.logger.Warn("send buffer full, scheduling resync")
		}
		select {
		case c.resyncCh <- struct{}{}:
		default:
		}
		return false
	}
}

func (c *Conn) countFrame(kind string) {
	if c.metrics != nil {
		c.metrics.FramesTotal.WithLabelValues(kind).Inc()
	}
}

// writePump owns all writes on the WebSocket.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case data := <-c.out:
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.resyncCh:
			c.drainOut()
			c.session.Resync(c)
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// drainOut discards queued frames so the resync render has room and is not
// preceded by stale patches.
func (c *Conn) drainOut() {
	for {
		select {
		case <-c.out:
		default:
			return
		}
	}
}

func (c *Conn) write(messageType int, data []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
	return c.ws.WriteMessage(messageType, data)
}

// readPump owns all reads on the WebSocket: it decodes inbound action
// events and forwards them to the session.
func (c *Conn) readPump(ctx context.Context) {
	defer c.close()

	c.ws.SetReadLimit(int64(c.config.MaxEventSize) + 1024)
	c.ws.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", "error", err)
			}
			return
		}

		evt, err := protocol.DecodeEvent(data, c.config.MaxEventSize)
		if err != nil {
			c.countEvent("malformed")
			c.logger.Warn("bad event", "error", err)
			c.SendNotice(map[string]any{"level": "error", "message": err.Error()})
			continue
		}

		switch err := c.session.Enqueue(ctx, evt.Action, live.Args(evt.Args), c); {
		case err == nil:
			c.countEvent("ok")
		case errors.Is(err, live.ErrSessionClosed):
			c.countEvent("closed")
			c.SendNotice(map[string]any{"level": "error", "message": "session closed"})
			return
		default:
			c.countEvent("dropped")
			c.SendNotice(map[string]any{"level": "error", "message": "server busy, event dropped"})
		}
	}
}

func (c *Conn) countEvent(result string) {
	if c.metrics != nil {
		c.metrics.EventsTotal.WithLabelValues(result).Inc()
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}
