package websocket

import (
	"log"
	"sync"
)

// Registry tracks live connections and their room membership. Rooms are
// keyed by session code: joining a room means receiving every broadcast
// addressed to that session.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection            // connection ID -> Connection
	rooms       map[string]map[string]*Connection // room code -> connection ID -> Connection
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*Connection),
		rooms:       make(map[string]map[string]*Connection),
	}
}

// Register adds a connection to the global map.
func (r *Registry) Register(conn *Connection) error {
	if conn == nil {
		return ErrNilConnection
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[conn.ID()] = conn
	return nil
}

// Unregister removes a connection from the global map and from any room
// it joined. Idempotent, and instance-compared so a stale connection
// can never evict a newer one registered under the same ID.
func (r *Registry) Unregister(conn *Connection) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	registered, exists := r.connections[conn.ID()]
	if !exists || registered != conn {
		return
	}
	delete(r.connections, conn.ID())

	if code := conn.GameCode(); code != "" {
		r.leaveRoomLocked(code, conn)
	}
}

// JoinRoom adds the connection to a session room.
func (r *Registry) JoinRoom(code string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[code] == nil {
		r.rooms[code] = make(map[string]*Connection)
	}
	r.rooms[code][conn.ID()] = conn
}

// LeaveRoom removes the connection from a session room, dropping the
// room map once it empties.
func (r *Registry) LeaveRoom(code string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveRoomLocked(code, conn)
}

func (r *Registry) leaveRoomLocked(code string, conn *Connection) {
	room, exists := r.rooms[code]
	if !exists {
		return
	}
	delete(room, conn.ID())
	if len(room) == 0 {
		delete(r.rooms, code)
	}
}

// Broadcast emits an event to every connection in a room. Delivery
// continues past individual failures; a slow or dead client must not
// stall the rest of the session.
func (r *Registry) Broadcast(code, event string, payload any) {
	r.mu.RLock()
	room := r.rooms[code]
	conns := make([]*Connection, 0, len(room))
	for _, conn := range room {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Emit(event, payload); err != nil {
			log.Printf("Broadcast delivery failed: room=%s event=%s conn=%s err=%v", code, event, conn.ID(), err)
		}
	}
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// RoomSize returns the number of connections in a room.
func (r *Registry) RoomSize(code string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[code])
}
