package room

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/liveroom-dev/liveroom/pkg/live"
	"github.com/liveroom-dev/liveroom/pkg/markup"
)

type echo struct {
	mounted bool
	value   string
}

func (e *echo) Mount(ctx *live.Ctx) error {
	e.mounted = true
	ctx.HandleFunc("set", func(ctx *live.Ctx) error {
		e.value = ctx.Args().String("value")
		return nil
	})
	return nil
}

func (e *echo) Render() *markup.Node {
	return markup.Div(nil, markup.Text(e.value))
}

func echoFactory(roomID string) (live.Component, error) {
	return &echo{}, nil
}

func newTestRegistry(t *testing.T, cfg *Config) *Registry {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
		cfg.SweepInterval = time.Hour
	}
	r := NewRegistry(echoFactory, cfg, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.Shutdown(ctx)
	})
	return r
}

func TestAcquireCreatesSession(t *testing.T) {
	r := newTestRegistry(t, nil)

	s, err := r.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s.RoomID != "a" {
		t.Errorf("RoomID = %q, want a", s.RoomID)
	}
	if s.Phase() != live.PhaseActive {
		t.Errorf("phase = %v, want active", s.Phase())
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestAcquireSharesSession(t *testing.T) {
	r := newTestRegistry(t, nil)

	s1, err := r.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	s2, err := r.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s1 != s2 {
		t.Error("second acquire for the same room returned a different session")
	}

	other, err := r.Acquire(context.Background(), "b")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if other == s1 {
		t.Error("different rooms share a session")
	}
}

func TestReleaseMarksClosing(t *testing.T) {
	r := newTestRegistry(t, nil)

	s, _ := r.Acquire(context.Background(), "a")
	r.Acquire(context.Background(), "a")

	r.Release("a")
	if s.Phase() != live.PhaseActive {
		t.Errorf("phase after partial release = %v, want active", s.Phase())
	}
	r.Release("a")
	if s.Phase() != live.PhaseClosing {
		t.Errorf("phase after last release = %v, want closing", s.Phase())
	}

	// A rebind during the grace period revives the same session.
	s2, err := r.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s2 != s {
		t.Error("rebind during grace period created a new session")
	}
	if s2.Phase() != live.PhaseActive {
		t.Errorf("phase after rebind = %v, want active", s2.Phase())
	}
}

func TestEvictIdleRoom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SweepInterval = time.Hour
	cfg.IdleTimeout = 0
	r := newTestRegistry(t, cfg)

	s, _ := r.Acquire(context.Background(), "a")
	if err := s.Dispatch(context.Background(), "set", live.Args{"value": "kept"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	r.Release("a")
	r.evictIdle()

	if r.Len() != 0 {
		t.Fatalf("Len = %d after eviction, want 0", r.Len())
	}
	if s.Phase() != live.PhaseClosed {
		t.Errorf("evicted session phase = %v, want closed", s.Phase())
	}

	// A new bind creates a fresh session with fresh state.
	s2, err := r.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s2 == s {
		t.Fatal("acquire after eviction returned the closed session")
	}
	if _, html := s2.Snapshot(); html == "" || strings.Contains(html, "kept") {
		t.Errorf("fresh session snapshot = %q", html)
	}
}

func TestEvictSkipsReferencedRoom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SweepInterval = time.Hour
	cfg.IdleTimeout = 0
	r := newTestRegistry(t, cfg)

	s, _ := r.Acquire(context.Background(), "a")
	r.evictIdle()

	if r.Len() != 1 {
		t.Fatalf("referenced room evicted")
	}
	if s.Phase() != live.PhaseActive {
		t.Errorf("phase = %v, want active", s.Phase())
	}
}

func TestEvictHonorsGracePeriod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SweepInterval = time.Hour
	cfg.IdleTimeout = time.Hour
	r := newTestRegistry(t, cfg)

	r.Acquire(context.Background(), "a")
	r.Release("a")
	r.evictIdle()

	if r.Len() != 1 {
		t.Error("room evicted before its grace period elapsed")
	}
}

func TestEvictNow(t *testing.T) {
	r := newTestRegistry(t, nil)

	s, _ := r.Acquire(context.Background(), "a")
	if !r.EvictNow("a") {
		t.Fatal("EvictNow = false for a live room")
	}
	if s.Phase() != live.PhaseClosed {
		t.Errorf("phase = %v, want closed", s.Phase())
	}
	if r.EvictNow("a") {
		t.Error("EvictNow = true for an absent room")
	}
}

func TestLookup(t *testing.T) {
	r := newTestRegistry(t, nil)

	if r.Lookup("a") != nil {
		t.Error("Lookup before acquire should be nil")
	}
	s, _ := r.Acquire(context.Background(), "a")
	if r.Lookup("a") != s {
		t.Error("Lookup returned a different session")
	}
}

func TestMaxRooms(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SweepInterval = time.Hour
	cfg.MaxRooms = 1
	r := newTestRegistry(t, cfg)

	if _, err := r.Acquire(context.Background(), "a"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := r.Acquire(context.Background(), "b"); !errors.Is(err, ErrTooManyRooms) {
		t.Errorf("err = %v, want ErrTooManyRooms", err)
	}
	// Rebinding a live room is not limited by the cap.
	if _, err := r.Acquire(context.Background(), "a"); err != nil {
		t.Errorf("Acquire existing room: %v", err)
	}
}

func TestFactoryError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(func(string) (live.Component, error) { return nil, boom }, nil, nil)
	t.Cleanup(func() { r.Shutdown(context.Background()) })

	if _, err := r.Acquire(context.Background(), "a"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want factory error", err)
	}
	if r.Len() != 0 {
		t.Errorf("failed room left in registry, Len = %d", r.Len())
	}
}

func TestShutdown(t *testing.T) {
	r := NewRegistry(echoFactory, nil, nil)

	s, _ := r.Acquire(context.Background(), "a")
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if s.Phase() != live.PhaseClosed {
		t.Errorf("phase = %v, want closed", s.Phase())
	}
	if _, err := r.Acquire(context.Background(), "a"); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("Acquire after shutdown = %v, want ErrRegistryClosed", err)
	}
	// Shutdown is idempotent.
	if err := r.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == "" || a == b {
		t.Errorf("NewID not unique: %q %q", a, b)
	}
}
