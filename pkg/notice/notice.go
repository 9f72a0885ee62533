// Package notice builds out-of-band notice payloads: transient messages
// delivered alongside the patch stream but never part of the markup tree.
package notice

import (
	"encoding/json"
	"time"

	"github.com/liveroom-dev/liveroom/pkg/live"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is the payload carried by a notice frame.
type Notice struct {
	Level    Level          `json:"level"`
	Title    string         `json:"title,omitempty"`
	Message  string         `json:"message"`
	Duration time.Duration  `json:"-"`
	Data     map[string]any `json:"data,omitempty"`
}

// MarshalJSON encodes Duration as whole milliseconds under "duration_ms",
// since Go's native nanosecond integer is an ambiguous unit for the
// browser-side client.
func (n *Notice) MarshalJSON() ([]byte, error) {
	type wire struct {
		Level      Level          `json:"level"`
		Title      string         `json:"title,omitempty"`
		Message    string         `json:"message"`
		DurationMS int64          `json:"duration_ms,omitempty"`
		Data       map[string]any `json:"data,omitempty"`
	}
	return json.Marshal(wire{n.Level, n.Title, n.Message, n.Duration.Milliseconds(), n.Data})
}

// Option customizes a notice.
type Option func(*Notice)

// WithTitle sets the notice title.
func WithTitle(title string) Option {
	return func(n *Notice) { n.Title = title }
}

// WithDuration suggests how long the client should display the notice.
func WithDuration(d time.Duration) Option {
	return func(n *Notice) { n.Duration = d }
}

// WithData attaches arbitrary structured data.
func WithData(data map[string]any) Option {
	return func(n *Notice) { n.Data = data }
}

// New builds a notice without sending it.
func New(level Level, message string, opts ...Option) *Notice {
	n := &Notice{Level: level, Message: message}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show queues a notice for broadcast after the current action completes.
func Show(ctx *live.Ctx, level Level, message string, opts ...Option) {
	ctx.Notify(New(level, message, opts...))
}

// Info queues an info notice.
func Info(ctx *live.Ctx, message string, opts ...Option) {
	Show(ctx, LevelInfo, message, opts...)
}

// Success queues a success notice.
func Success(ctx *live.Ctx, message string, opts ...Option) {
	Show(ctx, LevelSuccess, message, opts...)
}

// Warning queues a warning notice.
func Warning(ctx *live.Ctx, message string, opts ...Option) {
	Show(ctx, LevelWarning, message, opts...)
}

// Error queues an error notice.
func Error(ctx *live.Ctx, message string, opts ...Option) {
	Show(ctx, LevelError, message, opts...)
}
