package chat

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zhengyanglee07/Let-s-Chat/pkg/protocol"
)

const persistTimeout = 5 * time.Second

// MessageStore is the durable history boundary. Append is fire-and-forget
// from the relay's point of view: failures are logged, never surfaced to
// clients, and never block a broadcast that already happened.
type MessageStore interface {
	Append(ctx context.Context, msg protocol.ChatMessage) error
}

// Hub owns the presence table and room membership and drives the session
// lifecycle for every connection. All transports share a single Hub.
type Hub struct {
	log      *zap.Logger
	store    MessageStore
	registry *Registry
	rooms    *Rooms

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates a Hub. store may be nil when no history persistence is
// configured.
func NewHub(log *zap.Logger, store MessageStore) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:      log,
		store:    store,
		registry: NewRegistry(),
		rooms:    NewRooms(),
		clients:  make(map[*Client]struct{}),
	}
}

// Attach adds a freshly connected client to the hub. The client starts
// anonymous; it appears in presence only after declaring online.
func (h *Hub) Attach(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("client attached",
		zap.String("session", client.ID),
		zap.String("remote", client.Conn.RemoteAddr()))
}

// HandleClient reads events from the client until the connection closes and
// dispatches them to the presence and relay core. It blocks for the lifetime
// of the connection; cleanup runs exactly once on return.
func (h *Hub) HandleClient(ctx context.Context, client *Client) {
	defer h.disconnect(client)

	for {
		data, err := client.Conn.Read(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				h.log.Debug("read failed",
					zap.String("session", client.ID),
					zap.Error(err))
			}
			return
		}

		var event protocol.Event
		if err := event.Decode(data); err != nil {
			// Malformed frames are dropped without a reply.
			h.log.Debug("dropping malformed frame",
				zap.String("session", client.ID),
				zap.Error(err))
			continue
		}

		switch event.Type {
		case protocol.EventOnline:
			h.handleOnline(client, event.UserID)
		case protocol.EventOffline:
			h.handleOffline(client)
		case protocol.EventJoinChat:
			h.handleJoin(client, event.ChatID)
		case protocol.EventSendMessage:
			h.handleMessage(client, event.Message)
		default:
			h.log.Debug("ignoring unknown event",
				zap.String("session", client.ID),
				zap.String("event", event.Type.String()))
		}
	}
}

// handleOnline transitions the connection to Online(userID). Re-declaring
// overwrites the previous identity.
func (h *Hub) handleOnline(client *Client, userID string) {
	if userID == "" {
		return
	}
	h.registry.Register(client, userID)
	h.log.Info("user online",
		zap.String("user", userID),
		zap.String("session", client.ID))
	h.broadcastPresence()
}

// handleOffline removes the connection from presence. The broadcast fires
// only when an entry actually existed, so a stray offline from an anonymous
// connection stays silent.
func (h *Hub) handleOffline(client *Client) {
	if !h.registry.Unregister(client) {
		return
	}
	h.log.Info("user offline", zap.String("session", client.ID))
	h.broadcastPresence()
}

// handleJoin admits the connection to the room. Joining without a prior
// online declaration is accepted; liveness wins over strictness here.
func (h *Hub) handleJoin(client *Client, chatID string) {
	if chatID == "" {
		return
	}
	h.rooms.Join(chatID, client)
	h.log.Info("joined chat",
		zap.String("chatId", chatID),
		zap.String("session", client.ID))
}

// handleMessage relays the message to the target room and hands it to the
// store. The sender does not need to be a member of the room it targets.
func (h *Hub) handleMessage(client *Client, msg *protocol.ChatMessage) {
	if msg == nil || msg.ChatID == "" {
		return
	}

	h.relay(msg)

	if h.store != nil {
		stored := *msg
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if err := h.store.Append(ctx, stored); err != nil {
				h.log.Error("failed to persist message",
					zap.String("chatId", stored.ChatID),
					zap.Error(err))
			}
		}()
	}
}

// relay fans the message out to every current member of its room. A room
// with no members drops the message from realtime delivery; the history
// store still keeps it for the next page load.
func (h *Hub) relay(msg *protocol.ChatMessage) {
	members := h.rooms.Members(msg.ChatID)
	if len(members) == 0 {
		h.log.Debug("no members in room, dropping realtime delivery",
			zap.String("chatId", msg.ChatID))
		return
	}

	data, err := protocol.NewReceiveMessage(msg).Encode()
	if err != nil {
		h.log.Error("failed to encode message", zap.Error(err))
		return
	}

	delivered := 0
	for _, member := range members {
		if member.Send(data) {
			delivered++
		}
	}

	h.log.Debug("relayed message",
		zap.String("chatId", msg.ChatID),
		zap.String("sender", msg.Sender),
		zap.Int("delivered", delivered))
}

// disconnect runs the terminal transition for a connection. Removing the
// client from the hub's set first guarantees the cleanup happens once even
// when an explicit offline races the transport close; exactly one presence
// broadcast fires when the client was still registered.
func (h *Hub) disconnect(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	h.mu.Unlock()

	removed := h.registry.Unregister(client)
	h.rooms.RemoveAll(client)
	client.Close()

	h.log.Info("client disconnected",
		zap.String("session", client.ID),
		zap.Bool("wasOnline", removed))

	if removed {
		h.broadcastPresence()
	}
}

// broadcastPresence sends the current distinct online user list to every
// connected client, room membership irrelevant. Presence is global.
func (h *Hub) broadcastPresence() {
	users := h.registry.OnlineUsers()

	data, err := protocol.NewUserList(users).Encode()
	if err != nil {
		h.log.Error("failed to encode user list", zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.Send(data)
	}

	h.log.Debug("broadcast presence", zap.Int("online", len(users)))
}

// OnlineUsers returns the current presence snapshot. This is the pull
// counterpart to the updateUserList push, so late joiners do not have to
// wait for the next presence mutation.
func (h *Hub) OnlineUsers() []string {
	return h.registry.OnlineUsers()
}

// RoomMembers returns the session ids currently joined to the room.
func (h *Hub) RoomMembers(chatID string) []string {
	members := h.rooms.Members(chatID)
	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.ID)
	}
	return ids
}

// ClientCount returns the number of attached connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every attached client. Used on server shutdown.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.Close()
	}
}
