package middleware

import (
	"log/slog"
	"time"

	"github.com/liveroom-dev/liveroom/pkg/live"
)

// Logging returns middleware that logs each action with its outcome and
// duration. A nil logger uses slog.Default.
func Logging(logger *slog.Logger) live.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next live.HandlerFunc) live.HandlerFunc {
		return func(ctx *live.Ctx) error {
			start := time.Now()
			err := next(ctx)
			attrs := []any{
				"room_id", ctx.RoomID(),
				"action", ctx.Action(),
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Warn("action error", append(attrs, "error", err)...)
			} else {
				logger.Debug("action", attrs...)
			}
			return err
		}
	}
}
