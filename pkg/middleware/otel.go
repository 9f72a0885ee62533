package middleware

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/liveroom-dev/liveroom/pkg/live"
)

const tracerName = "github.com/liveroom-dev/liveroom"

// TraceOption configures the tracing middleware.
type TraceOption func(*traceOptions)

type traceOptions struct {
	tracer trace.Tracer
}

// WithTracer sets an explicit tracer. Defaults to the global provider.
func WithTracer(t trace.Tracer) TraceOption {
	return func(o *traceOptions) { o.tracer = t }
}

// Trace returns middleware that wraps each handler in a span named after
// the action. The span context is exposed to the handler through its Ctx.
func Trace(opts ...TraceOption) live.Middleware {
	o := &traceOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	return func(next live.HandlerFunc) live.HandlerFunc {
		return func(ctx *live.Ctx) error {
			spanCtx, span := o.tracer.Start(ctx.Context(), "action."+ctx.Action(),
				trace.WithAttributes(
					attribute.String("liveroom.room_id", ctx.RoomID()),
					attribute.String("liveroom.action", ctx.Action()),
				))
			defer span.End()

			prev := ctx.Context()
			ctx.SetContext(spanCtx)
			err := next(ctx)
			ctx.SetContext(prev)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return err
		}
	}
}
