// Package tcp provides a plain TCP transport for the chat relay. Frames are
// newline-delimited JSON events, one event per line.
package tcp

import (
	"bufio"
	"context"
	"net"
)

const maxFrameSize = 1 << 20

// Conn adapts a net.Conn to chat.Conn with line framing.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewConn wraps a net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, maxFrameSize),
	}
}

// Read implements chat.Conn. Reads one newline-terminated frame.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	// Strip the delimiter (and a CR, for telnet-style clients).
	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, nil
}

// Write implements chat.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	if _, err := c.conn.Write(data); err != nil {
		return err
	}
	_, err := c.conn.Write([]byte{'\n'})
	return err
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
