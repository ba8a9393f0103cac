package chat

import "sync"

// Registry maps each live connection to the user it represents. A connection
// carries at most one user id at a time; a user may hold several connections
// (multiple tabs). The set of distinct user ids with at least one entry
// defines who is online.
type Registry struct {
	mu    sync.RWMutex
	users map[*Client]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[*Client]string),
	}
}

// Register records the association between client and userID. Re-declaring
// on the same connection overwrites the previous entry.
func (r *Registry) Register(client *Client, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[client] = userID
}

// Unregister removes any association for the client and reports whether an
// entry was actually removed. Unknown clients are a silent no-op, which makes
// a racing explicit offline and transport disconnect resolve to a single
// effective removal.
func (r *Registry) Unregister(client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[client]; !ok {
		return false
	}
	delete(r.users, client)
	return true
}

// UserOf returns the user id registered for the client, if any.
func (r *Registry) UserOf(client *Client) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.users[client]
	return userID, ok
}

// OnlineUsers returns the distinct user ids with at least one registered
// connection. Order is unspecified.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.users))
	users := make([]string, 0, len(r.users))
	for _, userID := range r.users {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		users = append(users, userID)
	}
	return users
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
