package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// envelope frames every outbound event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Connection wraps a WebSocket connection with a single writer
// goroutine so that broadcasts from timers and handlers never race on
// the underlying socket. Each connection gets a server-side ID at
// upgrade time; that ID is the player's identity for its lifetime.
type Connection struct {
	id      string
	conn    *websocket.Conn
	writeCh chan []byte

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu       sync.RWMutex
	gameCode string // session this connection joined, "" until then
	pseudo   string
}

// NewConnection wraps conn and starts its writer goroutine.
func NewConnection(conn *websocket.Conn) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:      uuid.New().String(),
		conn:    conn,
		writeCh: make(chan []byte, 100),
		ctx:     ctx,
		cancel:  cancel,
	}

	go c.writeLoop()

	return c
}

// writeLoop serializes all writes to the socket.
func (c *Connection) writeLoop() {
	for {
		select {
		case data, ok := <-c.writeCh:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// Emit queues a named event for delivery to this client.
func (c *Connection) Emit(event string, payload any) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return ErrInvalidJSON
	}

	select {
	case c.writeCh <- data:
		return nil
	case <-time.After(5 * time.Second):
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// Close shuts the connection down exactly once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// ID returns the server-assigned connection identity.
func (c *Connection) ID() string {
	return c.id
}

// Context is cancelled when the connection closes.
func (c *Connection) Context() context.Context {
	return c.ctx
}

// SetGame records which session this connection belongs to, mirroring
// the room it joined.
func (c *Connection) SetGame(code, pseudo string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameCode = code
	c.pseudo = pseudo
}

// GameCode returns the joined session code, or "" if none.
func (c *Connection) GameCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameCode
}

// Pseudo returns the display name used to join, or "" if none.
func (c *Connection) Pseudo() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pseudo
}
