package chat_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhengyanglee07/Let-s-Chat/internal/chat"
)

// nopConn is a Conn that never produces data. Enough for registry and room
// tests, which never touch the transport.
type nopConn struct{}

func (nopConn) Read(ctx context.Context) ([]byte, error)     { <-ctx.Done(); return nil, ctx.Err() }
func (nopConn) Write(ctx context.Context, data []byte) error { return nil }
func (nopConn) Close() error                                 { return nil }
func (nopConn) RemoteAddr() string                           { return "test" }

func newTestClient() *chat.Client {
	return chat.NewClient(nopConn{})
}

func TestRegistry_RegisterAndOnlineUsers(t *testing.T) {
	registry := chat.NewRegistry()
	c1 := newTestClient()
	c2 := newTestClient()

	registry.Register(c1, "alice")
	registry.Register(c2, "bob")

	assert.ElementsMatch(t, []string{"alice", "bob"}, registry.OnlineUsers())
	assert.Equal(t, 2, registry.Len())
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	registry := chat.NewRegistry()
	client := newTestClient()

	registry.Register(client, "alice")
	registry.Register(client, "alice2")

	assert.ElementsMatch(t, []string{"alice2"}, registry.OnlineUsers())
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	registry := chat.NewRegistry()
	client := newTestClient()
	registry.Register(client, "alice")

	assert.True(t, registry.Unregister(client))
	assert.False(t, registry.Unregister(client))
	assert.Empty(t, registry.OnlineUsers())
}

func TestRegistry_UnregisterUnknownClient(t *testing.T) {
	registry := chat.NewRegistry()
	assert.False(t, registry.Unregister(newTestClient()))
}

func TestRegistry_MultiConnectionPresence(t *testing.T) {
	registry := chat.NewRegistry()
	tab1 := newTestClient()
	tab2 := newTestClient()

	registry.Register(tab1, "alice")
	registry.Register(tab2, "alice")
	assert.Equal(t, []string{"alice"}, registry.OnlineUsers())

	registry.Unregister(tab1)
	assert.Equal(t, []string{"alice"}, registry.OnlineUsers(),
		"user stays online while one connection remains")

	registry.Unregister(tab2)
	assert.Empty(t, registry.OnlineUsers())
}

func TestRegistry_UserOf(t *testing.T) {
	registry := chat.NewRegistry()
	client := newTestClient()

	_, ok := registry.UserOf(client)
	assert.False(t, ok)

	registry.Register(client, "alice")
	userID, ok := registry.UserOf(client)
	require.True(t, ok)
	assert.Equal(t, "alice", userID)
}

// TestRegistry_RandomInterleavings checks that after any concurrent mix of
// register and unregister calls, OnlineUsers equals the deduplicated set of
// users whose connections are still registered.
func TestRegistry_RandomInterleavings(t *testing.T) {
	registry := chat.NewRegistry()

	users := []string{"alice", "bob", "carol", "dave"}
	const workers = 8
	const opsPerWorker = 200

	clients := make([]*chat.Client, workers)
	for i := range clients {
		clients[i] = newTestClient()
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(client *chat.Client, seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for op := 0; op < opsPerWorker; op++ {
				if rng.Intn(3) == 0 {
					registry.Unregister(client)
				} else {
					registry.Register(client, users[rng.Intn(len(users))])
				}
			}
		}(clients[i], int64(i))
	}
	wg.Wait()

	// Rebuild the expected set from the surviving per-client entries.
	expected := make(map[string]struct{})
	for _, client := range clients {
		if userID, ok := registry.UserOf(client); ok {
			expected[userID] = struct{}{}
		}
	}

	online := registry.OnlineUsers()
	assert.Len(t, online, len(expected))
	for _, userID := range online {
		assert.Contains(t, expected, userID)
	}
}
