// Package push holds the in-memory registry that routes asynchronous
// completion events to the live WebSocket sessions of a user. The registry
// is process-lifetime state: it starts empty on every restart and is never
// persisted.
package push

import (
	"log"
	"sync"
)

// Conn is a live outbound channel to one client session. Satisfied by
// *websocket.Conn from gorilla/websocket.
type Conn interface {
	WriteJSON(v any) error
}

// Registry maps a user key (external auth UID) to the ordered list of that
// user's live connections. A user may have multiple simultaneous sessions
// (multiple tabs), so connect and disconnect on the same key can race.
type Registry struct {
	mu          sync.RWMutex
	connections map[string][]Conn
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string][]Conn),
	}
}

// Connect registers a connection under userKey.
func (r *Registry) Connect(conn Conn, userKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[userKey] = append(r.connections[userKey], conn)
	log.Printf("User %s connected. Total connections: %d", userKey, len(r.connections[userKey]))
}

// Disconnect removes a connection from the user's list. Safe to call even
// if the connection is not present. The user key is dropped entirely when
// its list becomes empty.
func (r *Registry) Disconnect(conn Conn, userKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(conn, userKey)
	log.Printf("User %s disconnected. Remaining connections: %d", userKey, len(r.connections[userKey]))
}

func (r *Registry) removeLocked(conn Conn, userKey string) {
	conns, ok := r.connections[userKey]
	if !ok {
		return
	}
	for i, c := range conns {
		if c == conn {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(r.connections, userKey)
	} else {
		r.connections[userKey] = conns
	}
}

// Send delivers message to every live connection of userKey. With no
// registered connections it is a silent no-op: the event is dropped, there
// is no queued redelivery. A delivery failure on one connection is logged,
// the failed connection is dropped from the registry, and delivery to the
// remaining connections proceeds.
func (r *Registry) Send(message any, userKey string) {
	r.mu.RLock()
	conns := make([]Conn, len(r.connections[userKey]))
	copy(conns, r.connections[userKey])
	r.mu.RUnlock()

	if len(conns) == 0 {
		log.Printf("No active connections for user %s, dropping message", userKey)
		return
	}

	var failed []Conn
	for _, conn := range conns {
		if err := conn.WriteJSON(message); err != nil {
			log.Printf("Failed to send message to a connection for user %s: %v", userKey, err)
			failed = append(failed, conn)
		}
	}

	if len(failed) > 0 {
		r.mu.Lock()
		for _, conn := range failed {
			r.removeLocked(conn, userKey)
		}
		r.mu.Unlock()
	}
}

// CountForUser returns the number of live connections for userKey.
func (r *Registry) CountForUser(userKey string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections[userKey])
}
