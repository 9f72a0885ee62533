package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Limits for inbound messages.
const (
	// DefaultMaxEventSize is the maximum size of an inbound event in bytes.
	DefaultMaxEventSize = 64 * 1024

	// MaxActionNameLen bounds the action name.
	MaxActionNameLen = 128
)

// Sentinel errors for inbound decoding.
var (
	// ErrEventTooLarge is returned when an inbound event exceeds the size limit.
	ErrEventTooLarge = errors.New("protocol: event too large")

	// ErrMalformedEvent is returned when an inbound event cannot be decoded.
	ErrMalformedEvent = errors.New("protocol: malformed event")
)

// ActionEvent is a client-originated action request.
type ActionEvent struct {
	Action string         `json:"action"`
	Args   map[string]any `json:"args,omitempty"`
}

// DecodeEvent parses an inbound action event. maxSize <= 0 uses
// DefaultMaxEventSize. A malformed or oversized event rejects only that
// event; the connection stays bound.
func DecodeEvent(data []byte, maxSize int) (*ActionEvent, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxEventSize
	}
	if len(data) > maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrEventTooLarge, len(data))
	}

	var evt ActionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.Action == "" {
		return nil, fmt.Errorf("%w: missing action", ErrMalformedEvent)
	}
	if len(evt.Action) > MaxActionNameLen {
		return nil, fmt.Errorf("%w: action name too long", ErrMalformedEvent)
	}
	return &evt, nil
}

// EncodeEvent serializes an action event. Used by clients and tests.
func EncodeEvent(evt *ActionEvent) ([]byte, error) {
	return json.Marshal(evt)
}
