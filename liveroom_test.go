package liveroom

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/liveroom-dev/liveroom/pkg/live"
	"github.com/liveroom-dev/liveroom/pkg/markup"
)

type greeter struct {
	name string
}

func (g *greeter) Mount(ctx *live.Ctx) error {
	ctx.HandleFunc("rename", func(ctx *live.Ctx) error {
		g.name = ctx.Args().String("name")
		return nil
	})
	return nil
}

func (g *greeter) Render() *markup.Node {
	return markup.Div(nil, markup.Textf("hello %s", g.name))
}

func TestAppWiring(t *testing.T) {
	var mwCalls int
	app := New(
		func(roomID string) (live.Component, error) {
			return &greeter{name: "world"}, nil
		},
		WithMiddleware(func(next live.HandlerFunc) live.HandlerFunc {
			return func(ctx *live.Ctx) error {
				mwCalls++
				return next(ctx)
			}
		}),
	)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		app.Shutdown(ctx)
	}()

	s, err := app.Registry().Acquire(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := s.Dispatch(context.Background(), "rename", live.Args{"name": "liveroom"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if mwCalls != 1 {
		t.Errorf("middleware calls = %d, want 1", mwCalls)
	}
	if _, html := s.Snapshot(); !strings.Contains(html, "hello liveroom") {
		t.Errorf("snapshot = %q", html)
	}
	if app.Server() == nil || app.Server().Router() == nil {
		t.Error("server not wired")
	}
}
