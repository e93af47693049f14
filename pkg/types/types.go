package types

import (
	"encoding/json"
)

// Session status values. Transitions are one-way:
// waiting -> playing -> finished.
const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Inbound event names sent by clients.
const (
	EventCreateGame   = "create-game"
	EventJoinGame     = "join-game"
	EventStartGame    = "start-game"
	EventSubmitAnswer = "submit-answer"
)

// Outbound event names emitted by the server.
const (
	EventGameCreated    = "game-created"
	EventJoinSuccess    = "join-success"
	EventJoinError      = "join-error"
	EventError          = "error"
	EventPlayerJoined   = "player-joined"
	EventPlayerLeft     = "player-left"
	EventGameStarted    = "game-started"
	EventNewQuestion    = "new-question"
	EventPlayerAnswered = "player-answered"
	EventQuestionResult = "question-result"
	EventGameEnded      = "game-ended"
)

// Session code format: 6 characters drawn from a 36-symbol alphabet.
const (
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength   = 6
)

// DefaultQuestionCount is used when create-game omits nbQuestions.
const DefaultQuestionCount = 10

// Question is a single quiz question with four answer options.
// Correct is the 1-based index of the right option and must never
// appear in a round payload sent to clients.
type Question struct {
	ID      int64
	Text    string
	Options [4]string
	Correct int
}

// Player is a session roster entry. Score accumulates across rounds
// and never decreases.
type Player struct {
	ConnectionID string
	Pseudo       string
	Score        int
	IsHost       bool
}

// Answer records one player's submission for the current round.
type Answer struct {
	Choice  int
	Elapsed float64 // seconds since the round started
}

// Envelope is the wire frame for inbound client events.
// Data stays raw until the router knows which payload to decode.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CreateGameRequest is the create-game payload.
type CreateGameRequest struct {
	NbQuestions int `json:"nbQuestions"`
}

// GameCreatedPayload answers a successful create-game.
type GameCreatedPayload struct {
	Code string `json:"code"`
}

// JoinGameRequest is the join-game payload.
type JoinGameRequest struct {
	Code   string `json:"code"`
	Pseudo string `json:"pseudo"`
}

// PlayerInfo is the public view of a roster entry.
type PlayerInfo struct {
	Pseudo string `json:"pseudo"`
	IsHost bool   `json:"isHost"`
}

// JoinSuccessPayload answers a successful join-game.
type JoinSuccessPayload struct {
	Code    string       `json:"code"`
	Players []PlayerInfo `json:"players"`
}

// PlayersPayload carries the roster for player-joined and player-left.
type PlayersPayload struct {
	Players []PlayerInfo `json:"players"`
}

// ErrorPayload carries a user-facing error message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// StartGameRequest is the start-game payload.
type StartGameRequest struct {
	Code string `json:"code"`
}

// SubmitAnswerRequest is the submit-answer payload. Answer is the
// 1-based option index the player picked.
type SubmitAnswerRequest struct {
	Code   string `json:"code"`
	Answer int    `json:"answer"`
}

// RoundPayload is broadcast as new-question. It deliberately has no
// field for the correct option.
type RoundPayload struct {
	Index    int      `json:"index"` // 1-based
	Total    int      `json:"total"`
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
	Timer    int      `json:"timer"` // countdown in seconds
}

// AnswerTally is broadcast as player-answered after each accepted answer.
type AnswerTally struct {
	AnswersCount int `json:"answersCount"`
	TotalPlayers int `json:"totalPlayers"`
}

// PlayerResult is one player's line in a question-result broadcast.
type PlayerResult struct {
	Pseudo     string `json:"pseudo"`
	IsCorrect  bool   `json:"isCorrect"`
	Points     int    `json:"points"`
	TotalScore int    `json:"totalScore"`
}

// RoundResult is broadcast as question-result once a round closes.
type RoundResult struct {
	CorrectAnswer     int            `json:"correctAnswer"`
	CorrectAnswerText string         `json:"correctAnswerText"`
	Results           []PlayerResult `json:"results"`
}

// RankingEntry is one line of the final ranking.
type RankingEntry struct {
	Pseudo string `json:"pseudo"`
	Score  int    `json:"score"`
}

// GameEndedPayload is broadcast as game-ended after the last round.
type GameEndedPayload struct {
	Ranking []RankingEntry `json:"ranking"`
}
