package live

import (
	"errors"
	"fmt"
)

// Sentinel errors for session and dispatch conditions.
var (
	// ErrUnknownAction is returned when no handler is registered for an action name.
	ErrUnknownAction = errors.New("live: unknown action")

	// ErrSessionClosed is returned when an action is dispatched to a closed session.
	ErrSessionClosed = errors.New("live: session closed")

	// ErrActionQueueFull is returned when the action queue is full and an event is dropped.
	ErrActionQueueFull = errors.New("live: action queue full")
)

// HandlerError wraps an application failure inside an action handler.
// The session's state is unchanged when a HandlerError is reported.
type HandlerError struct {
	RoomID string
	Action string
	Cause  error
}

// Error returns the error message with dispatch context.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("live: handler %q in room %s: %v", e.Action, e.RoomID, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *HandlerError) Unwrap() error {
	return e.Cause
}
