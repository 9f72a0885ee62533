package server

import (
	"log/slog"
	"testing"

	"github.com/liveroom-dev/liveroom/pkg/diff"
)

func newBufferedConn(size int) *Conn {
	return &Conn{
		config:   DefaultConfig(),
		logger:   slog.Default(),
		out:      make(chan []byte, size),
		resyncCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func opSet() []diff.Op {
	return []diff.Op{{Code: diff.OpSetText, ID: "n1", Value: "x"}}
}

func TestConnOverflowSchedulesResync(t *testing.T) {
	c := newBufferedConn(1)

	if err := c.SendPatch(0, 1, opSet()); err != nil {
		t.Fatalf("SendPatch: %v", err)
	}
	// Buffer is full now; the next patch overflows.
	if err := c.SendPatch(1, 2, opSet()); err != nil {
		t.Fatalf("SendPatch: %v", err)
	}

	if !c.needResync.Load() {
		t.Fatal("overflow did not set resync mode")
	}
	select {
	case <-c.resyncCh:
	default:
		t.Fatal("overflow did not signal the write pump")
	}
	if len(c.out) != 1 {
		t.Errorf("queued frames = %d, want 1", len(c.out))
	}
}

func TestConnDropsPatchesWhileResyncing(t *testing.T) {
	c := newBufferedConn(8)
	c.needResync.Store(true)

	if err := c.SendPatch(3, 4, opSet()); err != nil {
		t.Fatalf("SendPatch: %v", err)
	}
	if len(c.out) != 0 {
		t.Error("patch queued while waiting for resync")
	}
}

func TestConnRenderClearsResync(t *testing.T) {
	c := newBufferedConn(8)
	c.needResync.Store(true)

	if err := c.SendRender(5, "<div></div>"); err != nil {
		t.Fatalf("SendRender: %v", err)
	}
	if c.needResync.Load() {
		t.Error("render did not clear resync mode")
	}
	if len(c.out) != 1 {
		t.Errorf("queued frames = %d, want 1", len(c.out))
	}
}

func TestConnNoticesBypassResync(t *testing.T) {
	c := newBufferedConn(8)
	c.needResync.Store(true)

	if err := c.SendNotice(map[string]any{"level": "info", "message": "hi"}); err != nil {
		t.Fatalf("SendNotice: %v", err)
	}
	if len(c.out) != 1 {
		t.Errorf("queued frames = %d, want 1", len(c.out))
	}
}

func TestConnDrainOut(t *testing.T) {
	c := newBufferedConn(4)
	c.SendPatch(0, 1, opSet())
	c.SendPatch(1, 2, opSet())
	c.drainOut()
	if len(c.out) != 0 {
		t.Errorf("queued frames after drain = %d, want 0", len(c.out))
	}
}
