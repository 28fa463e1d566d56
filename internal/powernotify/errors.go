package powernotify

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadSize is returned when a broadcast for a known topic declares
	// a payload length other than the topic's encoded size.
	ErrPayloadSize = errors.New("payload size does not match topic")

	// ErrTruncated is returned when the message is shorter than its envelope
	// or its declared payload.
	ErrTruncated = errors.New("power broadcast truncated")

	// ErrClosed is returned by ProcessMessage after Close.
	ErrClosed = errors.New("power notification decoder is closed")
)

// DecodeError describes a broadcast that could not be decoded.
type DecodeError struct {
	Topic    Topic
	Declared uint32
	Expected uint32
	Err      error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrPayloadSize) {
		return fmt.Sprintf("decode %s broadcast: declared %d bytes, want %d: %v",
			e.Topic.Name(), e.Declared, e.Expected, e.Err)
	}
	return fmt.Sprintf("decode %s broadcast: %v", e.Topic.Name(), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RegistrationError reports a failed register or unregister call.
type RegistrationError struct {
	Op    string
	Topic Topic
	Err   error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s %s notification: %v", e.Op, e.Topic.Name(), e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }
