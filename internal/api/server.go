package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"quizhub/internal/game"
	"quizhub/internal/websocket"
)

// Pinger is the slice of the question store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the HTTP side of the coordinator: the WebSocket
// endpoint, a health check and a QR helper for joining live sessions.
type Server struct {
	games   *game.Registry
	conns   *websocket.Registry
	store   Pinger
	version string
	mux     *httprouter.Router
}

// NewServer wires the HTTP routes.
func NewServer(games *game.Registry, conns *websocket.Registry, store Pinger, wsHandler *websocket.Handler, version string) *Server {
	s := &Server{
		games:   games,
		conns:   conns,
		store:   store,
		version: version,
		mux:     httprouter.New(),
	}

	s.mux.HandlerFunc(http.MethodGet, "/ws", wsHandler.HandleWebSocket)
	s.mux.GET("/health", s.health)
	s.mux.GET("/version", s.serveVersion)
	s.mux.GET("/sessions/:code/qr", s.sessionQR)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		log.Printf("Health check failed: %v", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      status,
		"sessions":    s.games.Count(),
		"connections": s.conns.Count(),
	})
}

func (s *Server) serveVersion(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "quizhub v%s\n", s.version)
}

// sessionQR renders a QR code for joining a live session. Dead codes
// get a 404 so stale QR codes do not circulate.
func (s *Server) sessionQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	code := p.ByName("code")
	if _, ok := s.games.Get(code); !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	joinURL := fmt.Sprintf("http://%s/?code=%s", r.Host, code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
