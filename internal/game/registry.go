package game

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"quizhub/pkg/interfaces"
	"quizhub/pkg/types"
)

// Registry owns the mapping of session code to live Session. Codes are
// unique among live sessions at any instant; lookups are read-locked so
// concurrent connection handlers never block each other.
type Registry struct {
	repo     interfaces.QuestionRepository
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry backed by the given
// question repository.
func NewRegistry(repo interfaces.QuestionRepository) *Registry {
	return &Registry{
		repo:     repo,
		sessions: make(map[string]*Session),
	}
}

// CreateSession fetches a question set, then registers a new waiting
// session under a fresh code. Nothing is registered if the fetch fails,
// so a repository error never leaves a half-formed session behind.
// A repository that yields fewer questions than requested is not an
// error; the session simply runs shorter.
func (r *Registry) CreateSession(ctx context.Context, hostID string, questionCount int) (string, error) {
	if questionCount <= 0 {
		questionCount = types.DefaultQuestionCount
	}

	questions, err := r.repo.FetchRandom(ctx, questionCount)
	if err != nil {
		return "", fmt.Errorf("failed to fetch questions: %w", err)
	}
	if len(questions) == 0 {
		return "", ErrNoQuestions
	}

	r.mu.Lock()
	code := r.generateCodeLocked()
	r.sessions[code] = newSession(code, hostID, questions)
	r.mu.Unlock()

	log.Printf("Session created: code=%s host=%s questions=%d", code, hostID, len(questions))
	return code, nil
}

// generateCodeLocked draws 6-character codes until one is unused.
// Collisions are vanishingly rare at realistic session counts, but the
// loop stays correct regardless. Caller holds the write lock.
func (r *Registry) generateCodeLocked() string {
	for {
		b := make([]byte, types.CodeLength)
		for i := range b {
			b[i] = types.CodeAlphabet[rand.IntN(len(types.CodeAlphabet))]
		}
		code := string(b)
		if _, taken := r.sessions[code]; !taken {
			return code
		}
	}
}

// Get returns the session registered under code, if any.
func (r *Registry) Get(code string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	return s, ok
}

// Remove deletes the session registered under code. Idempotent.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	delete(r.sessions, code)
	r.mu.Unlock()
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Join adds a player to the session registered under code.
func (r *Registry) Join(code, connectionID, pseudo string) ([]types.PlayerInfo, error) {
	s, ok := r.Get(code)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Join(connectionID, pseudo)
}

// Start transitions the session to playing on behalf of requesterID.
func (r *Registry) Start(code, requesterID string) error {
	s, ok := r.Get(code)
	if !ok {
		return ErrSessionNotFound
	}
	return s.Start(requesterID)
}

// AdvanceRound moves the session to its next question. finished=true
// signals end of game; ok=false means the session no longer exists.
func (r *Registry) AdvanceRound(code string) (payload *types.RoundPayload, finished, ok bool) {
	s, exists := r.Get(code)
	if !exists {
		return nil, false, false
	}
	payload, finished = s.AdvanceRound()
	return payload, finished, true
}

// SubmitAnswer records an answer for the current round. Rejections are
// silent: accepted=false with no tally and no state change.
func (r *Registry) SubmitAnswer(code, connectionID string, choice int) (*types.AnswerTally, bool) {
	s, ok := r.Get(code)
	if !ok {
		return nil, false
	}
	return s.SubmitAnswer(connectionID, choice)
}

// AllAnswered reports whether every player in the session has answered.
func (r *Registry) AllAnswered(code string) bool {
	s, ok := r.Get(code)
	if !ok {
		return false
	}
	return s.AllAnswered()
}

// ScoreRound scores the session's current question.
func (r *Registry) ScoreRound(code string) (*types.RoundResult, bool) {
	s, ok := r.Get(code)
	if !ok {
		return nil, false
	}
	result := s.ScoreRound()
	if result == nil {
		return nil, false
	}
	return result, true
}

// FinalRanking returns the session's final standings.
func (r *Registry) FinalRanking(code string) []types.RankingEntry {
	s, ok := r.Get(code)
	if !ok {
		return nil
	}
	return s.FinalRanking()
}

// RemovePlayer drops a connection from the session roster. When the
// roster becomes empty the session itself is deleted and deleted=true
// is returned so callers can release any round timers.
func (r *Registry) RemovePlayer(code, connectionID string) (players []types.PlayerInfo, deleted, ok bool) {
	s, exists := r.Get(code)
	if !exists {
		return nil, false, false
	}

	players, empty := s.removePlayer(connectionID)
	if empty {
		r.Remove(code)
		log.Printf("Session deleted: code=%s", code)
		return nil, true, true
	}
	return players, false, true
}
