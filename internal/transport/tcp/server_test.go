package tcp_test

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zhengyanglee07/Let-s-Chat/internal/chat"
	"github.com/zhengyanglee07/Let-s-Chat/internal/transport/tcp"
	"github.com/zhengyanglee07/Let-s-Chat/pkg/protocol"
)

func startServer(t *testing.T) (*tcp.Server, *chat.Hub) {
	t.Helper()
	hub := chat.NewHub(zap.NewNop(), nil)
	srv := tcp.New(":0", hub, zap.NewNop())

	go func() { _ = srv.Start() }()
	t.Cleanup(srv.Stop)

	require.Eventually(t, func() bool { return srv.Addr() != "" },
		time.Second, 10*time.Millisecond)
	return srv, hub
}

func dial(t *testing.T, addr string) (net.Conn, *bufio.Scanner) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, bufio.NewScanner(conn)
}

func sendLine(t *testing.T, conn net.Conn, event *protocol.Event) {
	t.Helper()
	data, err := event.Encode()
	require.NoError(t, err)
	_, err = conn.Write(append(data, '\n'))
	require.NoError(t, err)
}

func readEvent(t *testing.T, scanner *bufio.Scanner) protocol.Event {
	t.Helper()
	require.True(t, scanner.Scan(), "expected a frame from the server")
	var event protocol.Event
	require.NoError(t, event.Decode(scanner.Bytes()))
	return event
}

func TestServer_OnlinePresenceRoundTrip(t *testing.T) {
	srv, _ := startServer(t)

	conn, scanner := dial(t, srv.Addr())
	sendLine(t, conn, &protocol.Event{Type: protocol.EventOnline, UserID: "alice"})

	event := readEvent(t, scanner)
	assert.Equal(t, protocol.EventUpdateUserList, event.Type)
	assert.Equal(t, []string{"alice"}, event.Users)
}

func TestServer_DisconnectUpdatesPresence(t *testing.T) {
	srv, hub := startServer(t)

	aliceConn, aliceScanner := dial(t, srv.Addr())
	sendLine(t, aliceConn, &protocol.Event{Type: protocol.EventOnline, UserID: "alice"})
	assert.Equal(t, []string{"alice"}, readEvent(t, aliceScanner).Users)

	bobConn, _ := dial(t, srv.Addr())
	sendLine(t, bobConn, &protocol.Event{Type: protocol.EventOnline, UserID: "bob"})
	assert.ElementsMatch(t, []string{"alice", "bob"}, readEvent(t, aliceScanner).Users)

	_ = bobConn.Close()

	assert.Equal(t, []string{"alice"}, readEvent(t, aliceScanner).Users)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestServer_MessageRelayBetweenConnections(t *testing.T) {
	srv, _ := startServer(t)

	room := chat.RoomKey("alice", "bob")

	aliceConn, _ := dial(t, srv.Addr())
	bobConn, bobScanner := dial(t, srv.Addr())

	sendLine(t, aliceConn, &protocol.Event{Type: protocol.EventJoinChat, ChatID: room})
	sendLine(t, bobConn, &protocol.Event{Type: protocol.EventJoinChat, ChatID: room})

	// Joins carry no acknowledgment; give the hub a moment to admit both.
	time.Sleep(50 * time.Millisecond)

	sendLine(t, aliceConn, &protocol.Event{
		Type: protocol.EventSendMessage,
		Message: &protocol.ChatMessage{
			Sender:    "alice",
			Receiver:  "bob",
			Text:      "hi",
			ChatID:    room,
			CreatedAt: time.Now(),
		},
	})

	event := readEvent(t, bobScanner)
	assert.Equal(t, protocol.EventReceiveMessage, event.Type)
	require.NotNil(t, event.Message)
	assert.Equal(t, "hi", event.Message.Text)
}
