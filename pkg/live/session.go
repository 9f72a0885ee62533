package live

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/liveroom-dev/liveroom/pkg/diff"
	"github.com/liveroom-dev/liveroom/pkg/markup"
)

// Phase is the session lifecycle phase.
type Phase int32

const (
	PhaseCreated Phase = iota
	PhaseMounted
	PhaseActive
	PhaseClosing
	PhaseClosed
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseMounted:
		return "mounted"
	case PhaseActive:
		return "active"
	case PhaseClosing:
		return "closing"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Subscriber receives the session's outbound stream. Implementations must
// not block: the transport layer buffers per connection and resynchronizes
// on overflow.
type Subscriber interface {
	// SendRender delivers a full render establishing a fresh baseline.
	SendRender(sequence uint64, html string) error

	// SendPatch delivers the ops stepping snapshot from to to.
	SendPatch(from, to uint64, ops []diff.Op) error

	// SendNotice delivers a one-shot out-of-band payload.
	SendNotice(payload any) error
}

// actionRequest is one queued action. reply is nil for fire-and-forget
// dispatch from the transport.
type actionRequest struct {
	ctx    context.Context
	action string
	args   Args
	origin Subscriber
	reply  chan error
}

// Session is the live, stateful unit bound to one room.
//
// The component's state is owned exclusively by the dispatch goroutine;
// nothing else reads or writes it. The mutex guards only the snapshot
// (last tree, sequence, rendered markup) and the subscriber set, so that a
// connection binding mid-stream gets a baseline consistent with the
// patches that follow.
type Session struct {
	// RoomID is the identifier of the room this session serves.
	RoomID string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	component Component
	handlers  map[string]HandlerFunc

	phase atomic.Int32

	// Snapshot and subscribers, guarded by mu.
	mu          sync.Mutex
	lastTree    *markup.Node
	seq         uint64
	html        string
	subscribers map[Subscriber]struct{}

	// Dispatch goroutine plumbing.
	actions chan actionRequest
	quit    chan struct{}
	done    chan struct{}
	started atomic.Bool
	closed  atomic.Bool

	idGen          *markup.IDGen
	pendingNotices []any

	config *Config
	logger *slog.Logger

	// Metrics
	actionCount atomic.Uint64
	errorCount  atomic.Uint64
	patchCount  atomic.Uint64
}

// NewSession creates a session for the given room and component. Call Start
// to mount the component and begin dispatching.
func NewSession(roomID string, component Component, config *Config, logger *slog.Logger) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		RoomID:      roomID,
		CreatedAt:   time.Now(),
		component:   component,
		handlers:    make(map[string]HandlerFunc),
		subscribers: make(map[Subscriber]struct{}),
		actions:     make(chan actionRequest, config.ActionQueueSize),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		idGen:       markup.NewIDGen(),
		config:      config,
		logger:      logger.With("room_id", roomID),
	}
}

// Start runs the mount hook, produces the initial snapshot (sequence 0) as
// a full render to every bound subscriber, and starts the dispatch
// goroutine. It must be called exactly once.
func (s *Session) Start(ctx context.Context) error {
	mctx := &Ctx{session: s, stdCtx: ctx}
	if err := s.component.Mount(mctx); err != nil {
		return fmt.Errorf("live: mount room %s: %w", s.RoomID, err)
	}
	s.phase.Store(int32(PhaseMounted))

	tree := s.component.Render()
	markup.AssignIDs(tree, s.idGen)
	html, err := markup.RenderString(tree)
	if err != nil {
		return fmt.Errorf("live: initial render room %s: %w", s.RoomID, err)
	}

	notices := s.pendingNotices
	s.pendingNotices = nil

	s.mu.Lock()
	s.lastTree = tree
	s.seq = 0
	s.html = html
	for sub := range s.subscribers {
		sub.SendRender(0, html)
	}
	for _, n := range notices {
		for sub := range s.subscribers {
			sub.SendNotice(n)
		}
	}
	s.mu.Unlock()

	s.phase.Store(int32(PhaseActive))
	s.started.Store(true)
	go s.run()

	s.logger.Info("session mounted", "handlers", len(s.handlers))
	return nil
}

// run is the dispatch goroutine: it executes queued actions strictly in
// order, one at a time.
func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case req := <-s.actions:
			s.execute(req)
		case <-s.quit:
			s.drain()
			s.phase.Store(int32(PhaseClosed))
			return
		}
	}
}

// drain executes whatever is left in the queue, bounded by ShutdownTimeout.
func (s *Session) drain() {
	deadline := time.NewTimer(s.config.ShutdownTimeout)
	defer deadline.Stop()
	for {
		select {
		case req := <-s.actions:
			s.execute(req)
		case <-deadline.C:
			return
		default:
			return
		}
	}
}

func (s *Session) execute(req actionRequest) {
	err := s.dispatchOne(req)
	if req.reply != nil {
		req.reply <- err
	}
}

// dispatchOne runs one action to completion: handler, then the
// render/diff/broadcast cycle.
func (s *Session) dispatchOne(req actionRequest) error {
	s.actionCount.Add(1)

	handler, ok := s.handlers[req.action]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownAction, req.action)
		s.errorCount.Add(1)
		s.logger.Warn("unknown action", "action", req.action)
		s.noticeTo(req.origin, errorPayload(err.Error()))
		return err
	}

	ctx := &Ctx{
		session: s,
		action:  req.action,
		args:    req.args,
		origin:  req.origin,
		stdCtx:  req.ctx,
	}

	var saved any
	restorable, canRestore := s.component.(Restorable)
	if canRestore {
		saved = restorable.SnapshotState()
	}

	if err := s.invoke(ctx, handler); err != nil {
		if canRestore {
			restorable.RestoreState(saved)
		}
		s.pendingNotices = nil
		s.errorCount.Add(1)
		s.logger.Warn("action failed", "action", req.action, "error", err)
		s.noticeTo(req.origin, errorPayload(err.Error()))
		return err
	}

	s.renderCycle()
	return nil
}

// invoke runs the handler through the middleware chain with panic recovery.
func (s *Session) invoke(ctx *Ctx, handler HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic",
				"action", ctx.action,
				"panic", r,
				"stack", string(debug.Stack()))
			err = &HandlerError{RoomID: s.RoomID, Action: ctx.action, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	wrapped := handler
	for i := len(s.config.Middleware) - 1; i >= 0; i-- {
		wrapped = s.config.Middleware[i](wrapped)
	}
	if herr := wrapped(ctx); herr != nil {
		return &HandlerError{RoomID: s.RoomID, Action: ctx.action, Cause: herr}
	}
	return nil
}

// renderCycle renders the component, diffs against the last snapshot, and
// broadcasts the resulting patch plus any pending notices. A textually
// unchanged render produces no patch frame but notices still go out.
func (s *Session) renderCycle() {
	notices := s.pendingNotices
	s.pendingNotices = nil

	tree := s.component.Render()

	s.mu.Lock()
	defer s.mu.Unlock()

	ops := diff.Diff(s.lastTree, tree, s.idGen)
	if len(ops) > 0 {
		html, err := markup.RenderString(tree)
		if err != nil {
			s.logger.Error("render failed", "error", err)
			return
		}
		from := s.seq
		s.seq++
		s.lastTree = tree
		s.html = html
		s.patchCount.Add(1)
		for sub := range s.subscribers {
			sub.SendPatch(from, s.seq, ops)
		}
	}
	for _, n := range notices {
		for sub := range s.subscribers {
			sub.SendNotice(n)
		}
	}
}

// noticeTo sends an error notice to the triggering subscriber only.
func (s *Session) noticeTo(origin Subscriber, payload any) {
	if origin == nil {
		return
	}
	origin.SendNotice(payload)
}

func errorPayload(message string) map[string]any {
	return map[string]any{"level": "error", "message": message}
}

// Dispatch queues an action and waits for it to execute. Concurrent calls
// for the same session are serialized in arrival order; the observed state
// transitions are always equivalent to some serial ordering.
func (s *Session) Dispatch(ctx context.Context, action string, args Args) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	reply := make(chan error, 1)
	req := actionRequest{ctx: ctx, action: action, args: args, reply: reply}
	select {
	case s.actions <- req:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue queues an action without waiting. Dispatch errors are reported to
// origin as an error notice. Returns ErrActionQueueFull when the queue is
// saturated, ErrSessionClosed after Close.
func (s *Session) Enqueue(ctx context.Context, action string, args Args, origin Subscriber) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	req := actionRequest{ctx: ctx, action: action, args: args, origin: origin}
	select {
	case s.actions <- req:
		return nil
	default:
		s.logger.Warn("action queue full, dropping event", "action", action)
		return ErrActionQueueFull
	}
}

// Attach binds a subscriber to the session. If the session is already
// mounted, the subscriber immediately receives the current snapshot as a
// full render: a mid-stream bind always starts from a fresh baseline,
// never from a patch.
func (s *Session) Attach(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[sub] = struct{}{}
	if Phase(s.phase.Load()) >= PhaseMounted {
		sub.SendRender(s.seq, s.html)
	}
}

// Detach unbinds a subscriber. Other subscribers on the same room are
// unaffected.
func (s *Session) Detach(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, sub)
}

// Resync re-sends the current snapshot as a full render to one subscriber.
// The transport uses this to recover a connection that fell behind.
func (s *Session) Resync(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if Phase(s.phase.Load()) >= PhaseMounted {
		sub.SendRender(s.seq, s.html)
	}
}

// Snapshot returns the current sequence number and rendered markup.
func (s *Session) Snapshot() (uint64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq, s.html
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	return Phase(s.phase.Load())
}

// MarkClosing moves an active session to closing. Called by the registry
// when the room's reference count reaches zero.
func (s *Session) MarkClosing() {
	s.phase.CompareAndSwap(int32(PhaseActive), int32(PhaseClosing))
}

// MarkActive moves a closing session back to active. Called by the registry
// when a connection rebinds during the eviction grace period.
func (s *Session) MarkActive() {
	s.phase.CompareAndSwap(int32(PhaseClosing), int32(PhaseActive))
}

// Close shuts the session down: the dispatch goroutine drains the action
// queue (bounded by ShutdownTimeout) and exits, after which the session
// rejects all dispatches. Close blocks until the drain completes and is
// safe to call more than once.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		if s.started.Load() {
			<-s.done
		}
		return
	}
	if Phase(s.phase.Load()) < PhaseClosing {
		s.phase.Store(int32(PhaseClosing))
	}
	close(s.quit)
	if s.started.Load() {
		<-s.done
	} else {
		s.phase.Store(int32(PhaseClosed))
		close(s.done)
	}

	s.mu.Lock()
	s.subscribers = make(map[Subscriber]struct{})
	s.mu.Unlock()

	s.logger.Info("session closed",
		"actions", s.actionCount.Load(),
		"errors", s.errorCount.Load(),
		"patches", s.patchCount.Load())
}

// Done returns a channel closed when the dispatch goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stats returns session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	seq := s.seq
	subs := len(s.subscribers)
	s.mu.Unlock()
	return Stats{
		RoomID:      s.RoomID,
		Phase:       s.Phase(),
		Sequence:    seq,
		Subscribers: subs,
		Actions:     s.actionCount.Load(),
		Errors:      s.errorCount.Load(),
		Patches:     s.patchCount.Load(),
	}
}

// Stats contains session statistics.
type Stats struct {
	RoomID      string
	Phase       Phase
	Sequence    uint64
	Subscribers int
	Actions     uint64
	Errors      uint64
	Patches     uint64
}
