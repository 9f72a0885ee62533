package room

import (
	"time"

	"github.com/liveroom-dev/liveroom/pkg/live"
)

const (
	// DefaultIdleTimeout is how long an unreferenced room survives before
	// eviction.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultSweepInterval is how often the registry scans for idle rooms.
	DefaultSweepInterval = 15 * time.Second
)

// Config configures the registry.
type Config struct {
	// IdleTimeout is the grace period for rooms with no bound
	// connections. Zero means evict on the next sweep.
	IdleTimeout time.Duration

	// SweepInterval controls the eviction scan frequency.
	SweepInterval time.Duration

	// MaxRooms caps concurrently live rooms. Zero means no cap.
	MaxRooms int

	// Session configures the sessions the registry creates.
	Session *live.Config
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		IdleTimeout:   DefaultIdleTimeout,
		SweepInterval: DefaultSweepInterval,
		Session:       live.DefaultConfig(),
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Session != nil {
		clone.Session = c.Session.Clone()
	}
	return &clone
}

// WithIdleTimeout sets the idle grace period and returns the config.
func (c *Config) WithIdleTimeout(d time.Duration) *Config {
	c.IdleTimeout = d
	return c
}

// WithMaxRooms sets the room cap and returns the config.
func (c *Config) WithMaxRooms(n int) *Config {
	c.MaxRooms = n
	return c
}
