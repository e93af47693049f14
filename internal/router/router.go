package router

import (
	"encoding/json"
	"errors"
	"log"

	"quizhub/internal/game"
	"quizhub/internal/scheduler"
	"quizhub/internal/websocket"
	"quizhub/pkg/types"
)

// Router translates inbound client events into session operations and
// emits the results to the originating connection or the session room.
// It holds no state of its own; all game state lives in the registry.
type Router struct {
	games     *game.Registry
	rooms     *websocket.Registry
	scheduler *scheduler.Scheduler

	defaultQuestions int
}

// NewRouter creates a message router.
func NewRouter(games *game.Registry, rooms *websocket.Registry, sched *scheduler.Scheduler, defaultQuestions int) *Router {
	if defaultQuestions <= 0 {
		defaultQuestions = types.DefaultQuestionCount
	}
	return &Router{
		games:            games,
		rooms:            rooms,
		scheduler:        sched,
		defaultQuestions: defaultQuestions,
	}
}

// HandleEvent dispatches one decoded client event. Unknown events are
// logged and dropped.
func (r *Router) HandleEvent(conn *websocket.Connection, env types.Envelope) {
	switch env.Event {
	case types.EventCreateGame:
		r.handleCreateGame(conn, env.Data)
	case types.EventJoinGame:
		r.handleJoinGame(conn, env.Data)
	case types.EventStartGame:
		r.handleStartGame(conn, env.Data)
	case types.EventSubmitAnswer:
		r.handleSubmitAnswer(conn, env.Data)
	default:
		log.Printf("Unknown event dropped: conn=%s event=%q", conn.ID(), env.Event)
	}
}

func (r *Router) handleCreateGame(conn *websocket.Connection, data json.RawMessage) {
	var req types.CreateGameRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			r.emitError(conn, types.EventError, "invalid create-game payload")
			return
		}
	}
	if req.NbQuestions <= 0 {
		req.NbQuestions = r.defaultQuestions
	}

	code, err := r.games.CreateSession(conn.Context(), conn.ID(), req.NbQuestions)
	if err != nil {
		log.Printf("Session creation failed: conn=%s err=%v", conn.ID(), err)
		r.emitError(conn, types.EventError, "failed to create game")
		return
	}

	r.rooms.JoinRoom(code, conn)
	conn.SetGame(code, "")

	if err := conn.Emit(types.EventGameCreated, types.GameCreatedPayload{Code: code}); err != nil {
		log.Printf("Failed to emit game-created: conn=%s err=%v", conn.ID(), err)
	}
}

func (r *Router) handleJoinGame(conn *websocket.Connection, data json.RawMessage) {
	var req types.JoinGameRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Code == "" || req.Pseudo == "" {
		r.emitError(conn, types.EventJoinError, "invalid join-game payload")
		return
	}

	players, err := r.games.Join(req.Code, conn.ID(), req.Pseudo)
	if err != nil {
		r.emitError(conn, types.EventJoinError, joinErrorMessage(err))
		return
	}

	r.rooms.JoinRoom(req.Code, conn)
	conn.SetGame(req.Code, req.Pseudo)

	r.rooms.Broadcast(req.Code, types.EventPlayerJoined, types.PlayersPayload{Players: players})
	if err := conn.Emit(types.EventJoinSuccess, types.JoinSuccessPayload{Code: req.Code, Players: players}); err != nil {
		log.Printf("Failed to emit join-success: conn=%s err=%v", conn.ID(), err)
	}

	log.Printf("Player joined: code=%s pseudo=%s conn=%s", req.Code, req.Pseudo, conn.ID())
}

func (r *Router) handleStartGame(conn *websocket.Connection, data json.RawMessage) {
	var req types.StartGameRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Code == "" {
		r.emitError(conn, types.EventError, "invalid start-game payload")
		return
	}

	if err := r.games.Start(req.Code, conn.ID()); err != nil {
		r.emitError(conn, types.EventError, startErrorMessage(err))
		return
	}

	r.rooms.Broadcast(req.Code, types.EventGameStarted, nil)
	r.scheduler.Begin(req.Code)

	log.Printf("Game started: code=%s", req.Code)
}

func (r *Router) handleSubmitAnswer(conn *websocket.Connection, data json.RawMessage) {
	var req types.SubmitAnswerRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Code == "" {
		// Answer races are dropped without feedback, and so are
		// malformed submissions.
		return
	}

	tally, accepted := r.games.SubmitAnswer(req.Code, conn.ID(), req.Answer)
	if !accepted {
		return
	}

	r.rooms.Broadcast(req.Code, types.EventPlayerAnswered, tally)
	r.scheduler.PlayerAnswered(req.Code)
}

// HandleDisconnect removes the connection's player from its session.
// The session is torn down, timers included, once its roster empties.
func (r *Router) HandleDisconnect(conn *websocket.Connection) {
	code := conn.GameCode()
	if code == "" {
		return
	}

	players, deleted, ok := r.games.RemovePlayer(code, conn.ID())
	if !ok {
		return
	}
	if deleted {
		r.scheduler.Cancel(code)
		return
	}

	r.rooms.Broadcast(code, types.EventPlayerLeft, types.PlayersPayload{Players: players})
}

func (r *Router) emitError(conn *websocket.Connection, event, message string) {
	if err := conn.Emit(event, types.ErrorPayload{Message: message}); err != nil {
		log.Printf("Failed to emit %s: conn=%s err=%v", event, conn.ID(), err)
	}
}

func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, game.ErrGameAlreadyStarted):
		return "the game has already started"
	case errors.Is(err, game.ErrDuplicatePseudo):
		return "this pseudo is already taken"
	default:
		return "failed to join game"
	}
}

func startErrorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, game.ErrGameAlreadyStarted):
		return "the game has already started"
	case errors.Is(err, game.ErrNotHost):
		return "only the host can start the game"
	case errors.Is(err, game.ErrNoPlayers):
		return "at least one player is required"
	default:
		return "failed to start game"
	}
}
