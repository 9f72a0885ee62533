package live

import "time"

// Config holds configuration for individual sessions.
type Config struct {
	// ActionQueueSize is the capacity of the per-session action queue.
	// Default: 256.
	ActionQueueSize int

	// ShutdownTimeout bounds how long a closing session keeps draining its
	// action queue before the dispatch goroutine exits.
	// Default: 5 seconds.
	ShutdownTimeout time.Duration

	// Middleware wraps every dispatched action handler, outermost first.
	Middleware []Middleware
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ActionQueueSize: 256,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Middleware != nil {
		clone.Middleware = make([]Middleware, len(c.Middleware))
		copy(clone.Middleware, c.Middleware)
	}
	return &clone
}

// WithMiddleware appends middleware and returns the config for chaining.
func (c *Config) WithMiddleware(mw ...Middleware) *Config {
	c.Middleware = append(c.Middleware, mw...)
	return c
}
