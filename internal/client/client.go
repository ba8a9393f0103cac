// Package client implements a WebSocket chat client used by the CLI.
package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/zhengyanglee07/Let-s-Chat/internal/chat"
	"github.com/zhengyanglee07/Let-s-Chat/pkg/protocol"
)

// Client maintains one WebSocket session with the relay server.
type Client struct {
	url    string
	userID string

	conn    net.Conn
	writeMu sync.Mutex
	events  chan protocol.Event
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// New creates a Client for the given server URL (ws://host:port/ws) and user.
func New(url, userID string) *Client {
	return &Client{
		url:    url,
		userID: userID,
		events: make(chan protocol.Event, 16),
		done:   make(chan struct{}),
	}
}

// Connect dials the server and starts the receive loop.
func (c *Client) Connect(ctx context.Context) error {
	conn, br, _, err := ws.Dial(ctx, c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	if br != nil {
		ws.PutReader(br)
	}
	c.conn = conn

	c.wg.Add(1)
	go c.receiveLoop()
	return nil
}

// Close terminates the session. Safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
	c.wg.Wait()
}

// Events returns the stream of server events. The channel is closed when the
// connection ends.
func (c *Client) Events() <-chan protocol.Event {
	return c.events
}

// UserID returns the identity this client declares.
func (c *Client) UserID() string {
	return c.userID
}

// Online declares this client's user as online.
func (c *Client) Online() error {
	return c.send(&protocol.Event{Type: protocol.EventOnline, UserID: c.userID})
}

// Offline declares this client's user as offline.
func (c *Client) Offline() error {
	return c.send(&protocol.Event{Type: protocol.EventOffline})
}

// JoinChat joins the conversation with the given peer.
func (c *Client) JoinChat(peer string) error {
	return c.send(&protocol.Event{
		Type:   protocol.EventJoinChat,
		ChatID: chat.RoomKey(c.userID, peer),
	})
}

// SendMessage sends text to the given peer's conversation.
func (c *Client) SendMessage(peer, text string) error {
	return c.send(&protocol.Event{
		Type: protocol.EventSendMessage,
		Message: &protocol.ChatMessage{
			Sender:    c.userID,
			Receiver:  peer,
			Text:      text,
			ChatID:    chat.RoomKey(c.userID, peer),
			CreatedAt: time.Now(),
		},
	})
}

func (c *Client) send(event *protocol.Event) error {
	data, err := event.Encode()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := wsutil.WriteClientText(c.conn, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", event.Type, err)
	}
	return nil
}

func (c *Client) receiveLoop() {
	defer c.wg.Done()
	defer close(c.events)

	for {
		data, err := wsutil.ReadServerText(c.conn)
		if err != nil {
			return
		}

		var event protocol.Event
		if err := event.Decode(data); err != nil {
			continue
		}

		select {
		case c.events <- event:
		case <-c.done:
			return
		}
	}
}
