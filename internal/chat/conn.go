// Package chat provides the presence and room-relay core shared by all
// transports.
package chat

import "context"

// Conn abstracts a bidirectional, message-framed client connection.
// This interface isolates transport details from the relay logic.
type Conn interface {
	// Read reads a single event frame (JSON bytes).
	// Returns io.EOF when the connection is closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single event frame (JSON bytes).
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
