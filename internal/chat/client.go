package chat

import (
	"sync"

	"github.com/google/uuid"
)

const outgoingBuffer = 64

// Client represents one live transport session. Delivery to the client goes
// through a buffered outgoing channel drained by the transport's write loop,
// so fan-out never blocks on a slow socket.
type Client struct {
	ID   string
	Conn Conn

	out  chan []byte
	done chan struct{}
	once sync.Once
}

// NewClient wraps a transport connection in a Client with a fresh session id.
func NewClient(conn Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		out:  make(chan []byte, outgoingBuffer),
		done: make(chan struct{}),
	}
}

// Send enqueues payload for delivery. It reports whether the payload was
// accepted: a closed client or a full buffer drops the frame instead of
// blocking the caller.
func (c *Client) Send(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- payload:
		return true
	default:
		return false
	}
}

// Close terminates the session and the underlying connection. Safe to call
// more than once; only the first call has any effect.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}

// Done is closed when the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Outgoing returns the channel the transport write loop drains.
func (c *Client) Outgoing() <-chan []byte {
	return c.out
}
