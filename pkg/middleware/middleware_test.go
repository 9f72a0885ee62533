package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liveroom-dev/liveroom/pkg/live"
	"github.com/liveroom-dev/liveroom/pkg/markup"
)

type probe struct{}

func (p *probe) Mount(ctx *live.Ctx) error {
	ctx.HandleFunc("ok", func(ctx *live.Ctx) error { return nil })
	ctx.HandleFunc("fail", func(ctx *live.Ctx) error { return errors.New("boom") })
	ctx.HandleFunc("traced", func(ctx *live.Ctx) error {
		if ctx.Context() == nil {
			return errors.New("no context")
		}
		return nil
	})
	return nil
}

func (p *probe) Render() *markup.Node {
	return markup.Div(nil, markup.Text("probe"))
}

func startWith(t *testing.T, mw ...live.Middleware) *live.Session {
	t.Helper()
	cfg := live.DefaultConfig().WithMiddleware(mw...)
	s := live.NewSession("room-1", &probe{}, cfg, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestMetricsRecordsActions(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := startWith(t, Metrics(WithRegisterer(reg), WithNamespace("test")))

	if err := s.Dispatch(context.Background(), "ok", nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	s.Dispatch(context.Background(), "fail", nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	if !found["test_actions_total"] {
		t.Errorf("missing actions counter, got %v", found)
	}
	if !found["test_action_duration_seconds"] {
		t.Errorf("missing duration histogram, got %v", found)
	}

	var okCount, errCount float64
	for _, mf := range families {
		if mf.GetName() != "test_actions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var action, result string
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "action":
					action = l.GetValue()
				case "result":
					result = l.GetValue()
				}
			}
			switch {
			case action == "ok" && result == "ok":
				okCount = m.GetCounter().GetValue()
			case action == "fail" && result == "error":
				errCount = m.GetCounter().GetValue()
			}
		}
	}
	if okCount != 1 {
		t.Errorf("ok count = %v, want 1", okCount)
	}
	if errCount != 1 {
		t.Errorf("error count = %v, want 1", errCount)
	}
}

func TestMetricsPassesErrorThrough(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := startWith(t, Metrics(WithRegisterer(reg)))

	if err := s.Dispatch(context.Background(), "fail", nil); err == nil {
		t.Error("middleware swallowed the handler error")
	}
}

func TestTraceWrapsHandler(t *testing.T) {
	s := startWith(t, Trace())

	if err := s.Dispatch(context.Background(), "traced", nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if err := s.Dispatch(context.Background(), "fail", nil); err == nil {
		t.Error("middleware swallowed the handler error")
	}
}

func TestLoggingPassesErrorThrough(t *testing.T) {
	s := startWith(t, Logging(nil))

	if err := s.Dispatch(context.Background(), "ok", nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if err := s.Dispatch(context.Background(), "fail", nil); err == nil {
		t.Error("middleware swallowed the handler error")
	}
}
