package game

import "errors"

// Session operation errors. All of these are reported back to the
// requesting connection only; none of them terminates the coordinator.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrDuplicatePseudo    = errors.New("pseudo already taken")
	ErrNotHost            = errors.New("only the host can start the game")
	ErrNoPlayers          = errors.New("at least one player is required")
	ErrNoQuestions        = errors.New("question repository returned no questions")
)
