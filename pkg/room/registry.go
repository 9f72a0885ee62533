package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/liveroom-dev/liveroom/pkg/live"
)

var (
	// ErrRegistryClosed is returned by Acquire after Shutdown.
	ErrRegistryClosed = errors.New("room: registry closed")

	// ErrTooManyRooms is returned by Acquire when MaxRooms is reached.
	ErrTooManyRooms = errors.New("room: too many rooms")
)

// Factory builds the root component for a new room.
type Factory func(roomID string) (live.Component, error)

// NewID returns a fresh room identifier.
func NewID() string {
	return uuid.NewString()
}

// entry pairs a session with its reference count. removed marks entries
// that lost the eviction race. Lookups take the registry lock only to find
// or insert the entry; session creation happens under the entry lock, so a
// slow Mount never stalls unrelated rooms.
type entry struct {
	mu        sync.Mutex
	session   *live.Session
	refs      int
	idleSince time.Time
	removed   bool
}

// Registry maps room IDs to live sessions.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*entry
	closed bool

	factory Factory
	config  *Config
	logger  *slog.Logger

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// NewRegistry creates a registry and starts its eviction sweeper.
func NewRegistry(factory Factory, config *Config, logger *slog.Logger) *Registry {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		rooms:     make(map[string]*entry),
		factory:   factory,
		config:    config,
		logger:    logger,
		sweepStop: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
	go r.sweep()
	return r
}

// Acquire returns the session for roomID, creating and mounting it when the
// room is not yet live, and increments the room's reference count. Every
// successful Acquire must be paired with a Release.
func (r *Registry) Acquire(ctx context.Context, roomID string) (*live.Session, error) {
	for {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, ErrRegistryClosed
		}
		e, ok := r.rooms[roomID]
		if !ok {
			if r.config.MaxRooms > 0 && len(r.rooms) >= r.config.MaxRooms {
				r.mu.Unlock()
				return nil, ErrTooManyRooms
			}
			e = &entry{}
			r.rooms[roomID] = e
		}
		r.mu.Unlock()

		e.mu.Lock()
		if e.removed {
			// Lost the race against eviction, the map slot is gone.
			e.mu.Unlock()
			continue
		}
		if e.session == nil {
			session, err := r.create(ctx, roomID)
			if err != nil {
				e.removed = true
				e.mu.Unlock()
				r.mu.Lock()
				delete(r.rooms, roomID)
				r.mu.Unlock()
				return nil, err
			}
			e.session = session
		}
		e.refs++
		e.session.MarkActive()
		session := e.session
		e.mu.Unlock()
		return session, nil
	}
}

func (r *Registry) create(ctx context.Context, roomID string) (*live.Session, error) {
	component, err := r.factory(roomID)
	if err != nil {
		return nil, fmt.Errorf("room: factory %s: %w", roomID, err)
	}
	session := live.NewSession(roomID, component, r.config.Session, r.logger)
	if err := session.Start(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("room created", "room_id", roomID)
	return session, nil
}

// Release decrements the room's reference count. When it reaches zero the
// session stays resident for the idle grace period before the sweeper
// evicts it.
func (r *Registry) Release(roomID string) {
	r.mu.Lock()
	e, ok := r.rooms[roomID]
	r.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.refs == 0 {
		return
	}
	e.refs--
	if e.refs == 0 && e.session != nil {
		e.idleSince = time.Now()
		e.session.MarkClosing()
	}
}

// Lookup returns the session for roomID without touching the reference
// count, or nil when the room is not live.
func (r *Registry) Lookup(roomID string) *live.Session {
	r.mu.Lock()
	e, ok := r.rooms[roomID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil
	}
	return e.session
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// ForEach calls fn for every live room until fn returns false. The
// iteration works on a snapshot of the room set; sessions may be evicted
// concurrently.
func (r *Registry) ForEach(fn func(roomID string, s *live.Session) bool) {
	r.mu.Lock()
	entries := make(map[string]*entry, len(r.rooms))
	for id, e := range r.rooms {
		entries[id] = e
	}
	r.mu.Unlock()

	for id, e := range entries {
		e.mu.Lock()
		session := e.session
		removed := e.removed
		e.mu.Unlock()
		if removed || session == nil {
			continue
		}
		if !fn(id, session) {
			return
		}
	}
}

func (r *Registry) sweep() {
	defer close(r.sweepDone)
	interval := r.config.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.sweepStop:
			return
		}
	}
}

// evictIdle closes rooms that have had no connections for the grace
// period. The entry lock is taken before the registry lock here; Acquire
// never holds both at once, so the ordering cannot deadlock.
func (r *Registry) evictIdle() {
	r.mu.Lock()
	candidates := make(map[string]*entry, len(r.rooms))
	for id, e := range r.rooms {
		candidates[id] = e
	}
	r.mu.Unlock()

	now := time.Now()
	for id, e := range candidates {
		e.mu.Lock()
		expired := e.refs == 0 && e.session != nil &&
			now.Sub(e.idleSince) >= r.config.IdleTimeout
		if !expired {
			e.mu.Unlock()
			continue
		}
		e.removed = true
		session := e.session
		r.mu.Lock()
		delete(r.rooms, id)
		r.mu.Unlock()
		e.mu.Unlock()

		session.Close()
		r.logger.Info("room evicted", "room_id", id,
			"idle", now.Sub(e.idleSince).Round(time.Second))
	}
}

// EvictNow force-evicts a room regardless of references or idle time.
// Bound connections observe the session as closed.
func (r *Registry) EvictNow(roomID string) bool {
	r.mu.Lock()
	e, ok := r.rooms[roomID]
	if ok {
		delete(r.rooms, roomID)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	e.removed = true
	session := e.session
	e.mu.Unlock()

	if session != nil {
		session.Close()
	}
	return true
}

// Shutdown stops the sweeper and closes every live session. Sessions drain
// their queued actions bounded by their shutdown timeout.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	rooms := r.rooms
	r.rooms = make(map[string]*entry)
	r.mu.Unlock()

	close(r.sweepStop)
	<-r.sweepDone

	var wg sync.WaitGroup
	for id, e := range rooms {
		e.mu.Lock()
		e.removed = true
		session := e.session
		e.mu.Unlock()
		if session == nil {
			continue
		}
		wg.Add(1)
		go func(id string, s *live.Session) {
			defer wg.Done()
			s.Close()
		}(id, session)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		r.logger.Info("registry shut down", "rooms", len(rooms))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
