package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"quizhub/pkg/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development. Production deployments
		// should implement stricter origin checking.
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// EventHandler receives decoded client events and disconnects. The
// message router implements this; the indirection keeps the transport
// package free of game logic.
type EventHandler interface {
	HandleEvent(conn *Connection, env types.Envelope)
	HandleDisconnect(conn *Connection)
}

// Handler upgrades HTTP requests to WebSocket connections and runs the
// per-connection read loop.
type Handler struct {
	registry *Registry
	events   EventHandler

	pingInterval time.Duration
	readTimeout  time.Duration
}

// NewHandler creates a WebSocket handler dispatching to events.
func NewHandler(registry *Registry, events EventHandler, pingInterval, readTimeout time.Duration) *Handler {
	return &Handler{
		registry:     registry,
		events:       events,
		pingInterval: pingInterval,
		readTimeout:  readTimeout,
	}
}

// HandleWebSocket upgrades the request and hands the connection to the
// read loop. The connection is identified by a fresh server-side ID,
// not by anything the client supplies.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	wsConn := NewConnection(conn)
	if err := h.registry.Register(wsConn); err != nil {
		log.Printf("Failed to register connection: %v", err)
		_ = wsConn.Close()
		return
	}

	log.Printf("Client connected: conn=%s", wsConn.ID())

	go h.handleConnection(wsConn)
}

// handleConnection reads client events until the socket drops, keeping
// the connection alive with ping/pong heartbeats.
func (h *Handler) handleConnection(conn *Connection) {
	defer func() {
		h.registry.Unregister(conn)
		h.events.HandleDisconnect(conn)
		_ = conn.Close()
		log.Printf("Client disconnected: conn=%s", conn.ID())
	}()

	if err := conn.conn.SetReadDeadline(time.Now().Add(h.readTimeout)); err != nil {
		log.Printf("Failed to set read deadline: %v", err)
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	})

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: conn=%s err=%v", conn.ID(), err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var env types.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("Malformed frame dropped: conn=%s err=%v", conn.ID(), err)
			continue
		}

		h.events.HandleEvent(conn, env)
	}
}
