package ws

import (
	"context"
	"net/http"

	"github.com/gobwas/ws"
	"go.uber.org/zap"

	"github.com/zhengyanglee07/Let-s-Chat/internal/chat"
)

// Handler upgrades HTTP requests to WebSocket sessions and hands them to the
// Hub. Transport binding (path, CORS) is the HTTP server's concern; this
// handler only owns the socket.
func Handler(hub *chat.Hub, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			log.Warn("websocket upgrade failed",
				zap.String("remote", r.RemoteAddr),
				zap.Error(err))
			return
		}

		client := chat.NewClient(NewConn(conn))
		hub.Attach(client)

		go writeLoop(log, client)

		// The connection is hijacked; the request context dies with the
		// handler's HTTP bookkeeping, not with the socket.
		hub.HandleClient(context.Background(), client)
	}
}

// writeLoop drains the client's outgoing channel onto the socket. A failed
// write closes the client, which in turn unblocks the hub's read loop.
func writeLoop(log *zap.Logger, client *chat.Client) {
	for {
		select {
		case <-client.Done():
			return
		case data := <-client.Outgoing():
			if err := client.Conn.Write(context.Background(), data); err != nil {
				log.Debug("websocket write failed",
					zap.String("session", client.ID),
					zap.Error(err))
				client.Close()
				return
			}
		}
	}
}
