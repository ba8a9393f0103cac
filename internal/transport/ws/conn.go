// Package ws provides the WebSocket transport for the chat relay.
package ws

import (
	"context"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Conn adapts a gobwas/ws server-side connection to chat.Conn. Frames are
// text messages carrying one JSON event each.
type Conn struct {
	conn       net.Conn
	remoteAddr string
}

// NewConn wraps an upgraded WebSocket connection.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, remoteAddr: conn.RemoteAddr().String()}
}

// Read implements chat.Conn. gobwas performs blocking reads on the raw
// connection, so the context is not consulted mid-read; closing the
// connection unblocks it.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	data, err := wsutil.ReadClientText(c.conn)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write implements chat.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	return wsutil.WriteServerText(c.conn, data)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	_ = wsutil.WriteServerMessage(c.conn, ws.OpClose, nil)
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}
