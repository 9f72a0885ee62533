package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/liveroom-dev/liveroom/pkg/protocol"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultSendBufferSize is the per-connection outbound frame buffer.
	// Overflow triggers a resync rather than blocking the session.
	DefaultSendBufferSize = 64

	// DefaultWriteWait bounds a single WebSocket write.
	DefaultWriteWait = 10 * time.Second

	// DefaultPongWait is how long to wait for a pong before dropping the
	// connection.
	DefaultPongWait = 60 * time.Second

	// DefaultPingInterval must be shorter than DefaultPongWait.
	DefaultPingInterval = 30 * time.Second
)

// Config configures the WebSocket server.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// SendBufferSize is the outbound frame buffer per connection.
	SendBufferSize int

	// MaxEventSize caps inbound event payloads in bytes.
	MaxEventSize int

	WriteWait    time.Duration
	PongWait     time.Duration
	PingInterval time.Duration

	// CheckOrigin validates the Origin header during the upgrade. Nil
	// permits same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// ReadTimeout and WriteTimeout apply to the HTTP server for non-
	// upgraded requests.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:           DefaultAddr,
		SendBufferSize: DefaultSendBufferSize,
		MaxEventSize:   protocol.DefaultMaxEventSize,
		WriteWait:      DefaultWriteWait,
		PongWait:       DefaultPongWait,
		PingInterval:   DefaultPingInterval,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
	}
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// WithAddr sets the listen address and returns the config.
func (c *Config) WithAddr(addr string) *Config {
	c.Addr = addr
	return c
}

// WithCheckOrigin sets the upgrade origin check and returns the config.
func (c *Config) WithCheckOrigin(fn func(r *http.Request) bool) *Config {
	c.CheckOrigin = fn
	return c
}

// AllowedOrigins returns an origin check accepting requests with no Origin
// header or an Origin whose host matches one of the given hosts.
func AllowedOrigins(hosts ...string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		allowed[h] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return allowed[u.Host]
	}
}
