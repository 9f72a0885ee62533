package live

import (
	"context"
	"log/slog"
)

// Ctx is passed to Mount and to action handlers. It is only valid on the
// session's dispatch goroutine, for the duration of the call it was created
// for.
type Ctx struct {
	session *Session
	action  string
	args    Args
	origin  Subscriber
	stdCtx  context.Context
}

// RoomID returns the session's room identifier.
func (c *Ctx) RoomID() string {
	return c.session.RoomID
}

// Action returns the name of the action being dispatched, or "" during Mount.
func (c *Ctx) Action() string {
	return c.action
}

// Args returns the arguments of the action being dispatched.
func (c *Ctx) Args() Args {
	return c.args
}

// Context returns the standard context for the current call. Handlers
// performing I/O should pass it along.
func (c *Ctx) Context() context.Context {
	if c.stdCtx == nil {
		return context.Background()
	}
	return c.stdCtx
}

// SetContext replaces the standard context for the remainder of the call.
// Used by middleware to propagate trace spans into handlers.
func (c *Ctx) SetContext(ctx context.Context) {
	c.stdCtx = ctx
}

// Logger returns the session's logger.
func (c *Ctx) Logger() *slog.Logger {
	return c.session.logger
}

// HandleFunc registers an action handler under the given name. Typically
// called from Mount; a later registration under the same name replaces the
// earlier one.
func (c *Ctx) HandleFunc(name string, fn HandlerFunc) {
	c.session.handlers[name] = fn
}

// Notify queues a one-shot notice for every connection bound to the room.
// Notices ride the out-of-band channel, so they are delivered even when the
// action leaves the markup unchanged. Queued notices are discarded if the
// handler fails.
func (c *Ctx) Notify(payload any) {
	c.session.pendingNotices = append(c.session.pendingNotices, payload)
}
