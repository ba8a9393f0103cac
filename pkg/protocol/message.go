// Package protocol defines the wire events exchanged between chat clients
// and the relay server. Events are JSON objects carrying an "event"
// discriminator so browser clients can speak the protocol directly.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies the kind of a wire event.
type EventType string

const (
	// Client to server.
	EventOnline      EventType = "online"
	EventOffline     EventType = "offline"
	EventJoinChat    EventType = "joinChat"
	EventSendMessage EventType = "sendMessage"

	// Server to client.
	EventUpdateUserList EventType = "updateUserList"
	EventReceiveMessage EventType = "receiveMessage"
)

// String returns the wire name of the event type.
func (et EventType) String() string {
	return string(et)
}

// ChatMessage is a single chat message. It is immutable once constructed;
// the relay forwards it verbatim and holds no message state afterwards.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Text      string    `json:"text"`
	ChatID    string    `json:"chatId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event is the envelope for all wire traffic. Only the fields relevant to
// the event type are populated; the rest are omitted on the wire.
type Event struct {
	Type    EventType    `json:"event"`
	UserID  string       `json:"userId,omitempty"`
	ChatID  string       `json:"chatId,omitempty"`
	Users   []string     `json:"users,omitempty"`
	Message *ChatMessage `json:"message,omitempty"`
}

// Encode encodes the event into JSON bytes.
func (e *Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return data, nil
}

// Decode decodes JSON bytes into the event.
func (e *Event) Decode(data []byte) error {
	if err := json.Unmarshal(data, e); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	return nil
}

// NewUserList builds the presence notification broadcast to every client.
func NewUserList(users []string) *Event {
	return &Event{Type: EventUpdateUserList, Users: users}
}

// NewReceiveMessage builds the event delivered to room members on relay.
func NewReceiveMessage(msg *ChatMessage) *Event {
	return &Event{Type: EventReceiveMessage, Message: msg}
}
