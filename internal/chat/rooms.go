package chat

import (
	"strings"
	"sync"
)

// RoomKey returns the deterministic conversation key for two participants.
// Both sides compute the same key regardless of argument order.
func RoomKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// ParseRoomKey splits a conversation key back into its participant ids.
func ParseRoomKey(key string) (string, string, bool) {
	a, b, ok := strings.Cut(key, "_")
	return a, b, ok
}

// Rooms tracks which connections belong to which conversation channel.
// Membership is transient and rebuilt each session; a connection may belong
// to any number of rooms at once.
type Rooms struct {
	mu          sync.RWMutex
	rooms       map[string]map[*Client]struct{}
	memberships map[*Client]map[string]struct{}
}

// NewRooms creates an empty membership table.
func NewRooms() *Rooms {
	return &Rooms{
		rooms:       make(map[string]map[*Client]struct{}),
		memberships: make(map[*Client]map[string]struct{}),
	}
}

// Join adds the client to the room's member set. Joining a room the client
// is already a member of is a no-op.
func (r *Rooms) Join(roomKey string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[roomKey]
	if room == nil {
		room = make(map[*Client]struct{})
		r.rooms[roomKey] = room
	}
	if _, ok := room[client]; ok {
		return
	}
	room[client] = struct{}{}

	joined := r.memberships[client]
	if joined == nil {
		joined = make(map[string]struct{})
		r.memberships[client] = joined
	}
	joined[roomKey] = struct{}{}
}

// Members returns a snapshot of the room's member set for fan-out. An
// unknown room yields an empty slice, not an error.
func (r *Rooms) Members(roomKey string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomKey]
	members := make([]*Client, 0, len(room))
	for client := range room {
		members = append(members, client)
	}
	return members
}

// RemoveAll removes the client from every room it joined. Empty rooms are
// deleted so the table does not grow with dead conversations.
func (r *Rooms) RemoveAll(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomKey := range r.memberships[client] {
		room := r.rooms[roomKey]
		delete(room, client)
		if len(room) == 0 {
			delete(r.rooms, roomKey)
		}
	}
	delete(r.memberships, client)
}

// RoomCount returns the number of rooms with at least one member.
func (r *Rooms) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
