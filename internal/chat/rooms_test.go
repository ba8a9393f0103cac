package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhengyanglee07/Let-s-Chat/internal/chat"
)

func TestRoomKey_Deterministic(t *testing.T) {
	assert.Equal(t, "alice_bob", chat.RoomKey("alice", "bob"))
	assert.Equal(t, "alice_bob", chat.RoomKey("bob", "alice"))
	assert.Equal(t, chat.RoomKey("u1", "u2"), chat.RoomKey("u2", "u1"))
}

func TestParseRoomKey(t *testing.T) {
	a, b, ok := chat.ParseRoomKey("alice_bob")
	assert.True(t, ok)
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)

	_, _, ok = chat.ParseRoomKey("nodelimiter")
	assert.False(t, ok)
}

func TestRooms_JoinAndMembers(t *testing.T) {
	rooms := chat.NewRooms()
	c1 := newTestClient()
	c2 := newTestClient()

	rooms.Join("alice_bob", c1)
	rooms.Join("alice_bob", c2)

	assert.ElementsMatch(t, []*chat.Client{c1, c2}, rooms.Members("alice_bob"))
}

func TestRooms_JoinIdempotent(t *testing.T) {
	rooms := chat.NewRooms()
	client := newTestClient()

	rooms.Join("alice_bob", client)
	rooms.Join("alice_bob", client)

	assert.Len(t, rooms.Members("alice_bob"), 1)
}

func TestRooms_UnknownRoomIsEmpty(t *testing.T) {
	rooms := chat.NewRooms()
	assert.Empty(t, rooms.Members("nobody_here"))
}

func TestRooms_MultiRoomMembership(t *testing.T) {
	rooms := chat.NewRooms()
	client := newTestClient()

	rooms.Join("alice_bob", client)
	rooms.Join("alice_carol", client)

	assert.Len(t, rooms.Members("alice_bob"), 1)
	assert.Len(t, rooms.Members("alice_carol"), 1)
	assert.Equal(t, 2, rooms.RoomCount())
}

func TestRooms_Isolation(t *testing.T) {
	rooms := chat.NewRooms()
	ab := newTestClient()
	ac := newTestClient()

	rooms.Join("alice_bob", ab)
	rooms.Join("alice_carol", ac)

	members := rooms.Members("alice_bob")
	assert.Len(t, members, 1)
	assert.NotContains(t, members, ac)
}

func TestRooms_RemoveAll(t *testing.T) {
	rooms := chat.NewRooms()
	client := newTestClient()
	other := newTestClient()

	rooms.Join("alice_bob", client)
	rooms.Join("alice_carol", client)
	rooms.Join("alice_bob", other)

	rooms.RemoveAll(client)

	assert.ElementsMatch(t, []*chat.Client{other}, rooms.Members("alice_bob"))
	assert.Empty(t, rooms.Members("alice_carol"))
	assert.Equal(t, 1, rooms.RoomCount(), "empty rooms are pruned")
}

func TestRooms_RemoveAllUnknownClient(t *testing.T) {
	rooms := chat.NewRooms()
	rooms.RemoveAll(newTestClient()) // must not panic
	assert.Equal(t, 0, rooms.RoomCount())
}
