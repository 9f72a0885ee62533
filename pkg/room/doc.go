// Package room maintains the registry of live sessions keyed by room
// identifier. Connections acquire a session by room ID; the first acquire
// for a room creates and mounts the session, later acquires bind to the
// same one. A room whose last connection dropped survives for a grace
// period so a reload or a flaky network can rebind without losing state.
package room
