// Package server exposes live sessions over WebSocket. Each connection
// binds to exactly one room, forwards inbound action events to the room's
// session, and streams the session's render, patch, and notice frames back
// out through a bounded per-connection buffer. A connection that cannot
// keep up is resynchronized with a full render instead of being allowed to
// stall the session.
package server
