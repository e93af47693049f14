package game

import (
	"sort"
	"sync"
	"time"

	"quizhub/pkg/types"
)

// Session holds the full state of one trivia game. All exported methods
// take the session mutex, so every operation is atomic with respect to
// concurrent answer submissions, round advances and roster changes.
type Session struct {
	mu sync.Mutex

	code       string
	hostID     string
	players    []*types.Player
	questions  []types.Question
	current    int // -1 before the first round
	status     string
	answers    map[string]types.Answer // connection ID -> answer
	roundStart time.Time
}

func newSession(code, hostID string, questions []types.Question) *Session {
	return &Session{
		code:      code,
		hostID:    hostID,
		questions: questions,
		current:   -1,
		status:    types.StatusWaiting,
		answers:   make(map[string]types.Answer),
	}
}

// Code returns the session's join code.
func (s *Session) Code() string {
	return s.code
}

// Status returns the current lifecycle status.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Players returns the public roster view in join order.
func (s *Session) Players() []types.PlayerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playersLocked()
}

func (s *Session) playersLocked() []types.PlayerInfo {
	infos := make([]types.PlayerInfo, len(s.players))
	for i, p := range s.players {
		infos[i] = types.PlayerInfo{Pseudo: p.Pseudo, IsHost: p.IsHost}
	}
	return infos
}

// Join adds a player to the roster and returns the updated roster.
// Checks run in order: the game must not have started, and the pseudo
// must not already be taken (case-sensitive match).
func (s *Session) Join(connectionID, pseudo string) ([]types.PlayerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != types.StatusWaiting {
		return nil, ErrGameAlreadyStarted
	}
	for _, p := range s.players {
		if p.Pseudo == pseudo {
			return nil, ErrDuplicatePseudo
		}
	}

	s.players = append(s.players, &types.Player{
		ConnectionID: connectionID,
		Pseudo:       pseudo,
		IsHost:       connectionID == s.hostID,
	})
	return s.playersLocked(), nil
}

// Start transitions a waiting session to playing. Only the host
// connection may start, and at least one player must have joined.
// Status transitions are one-way, so a playing or finished session
// rejects the request.
func (s *Session) Start(requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != types.StatusWaiting {
		return ErrGameAlreadyStarted
	}
	if requesterID != s.hostID {
		return ErrNotHost
	}
	if len(s.players) == 0 {
		return ErrNoPlayers
	}

	s.status = types.StatusPlaying
	return nil
}

// AdvanceRound moves to the next question, clearing the answer ledger
// and stamping the round start time. It returns finished=true once the
// question list is exhausted, after marking the session finished.
func (s *Session) AdvanceRound() (payload *types.RoundPayload, finished bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current++
	s.answers = make(map[string]types.Answer)
	s.roundStart = time.Now()

	if s.current >= len(s.questions) {
		s.status = types.StatusFinished
		return nil, true
	}

	q := s.questions[s.current]
	return &types.RoundPayload{
		Index:    s.current + 1,
		Total:    len(s.questions),
		Question: q.Text,
		Answers:  q.Options[:],
	}, false
}

// SubmitAnswer records a player's choice for the current round. The
// submission is dropped (accepted=false, no state change) when the game
// is not in progress, no question has been dealt yet, or the connection
// already answered this round.
func (s *Session) SubmitAnswer(connectionID string, choice int) (tally *types.AnswerTally, accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != types.StatusPlaying || s.current < 0 {
		return nil, false
	}
	if _, answered := s.answers[connectionID]; answered {
		return nil, false
	}

	s.answers[connectionID] = types.Answer{
		Choice:  choice,
		Elapsed: time.Since(s.roundStart).Seconds(),
	}
	return &types.AnswerTally{
		AnswersCount: len(s.answers),
		TotalPlayers: len(s.players),
	}, true
}

// AllAnswered reports whether every rostered player has answered the
// current round.
func (s *Session) AllAnswered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers) >= len(s.players)
}

// ScoreRound awards points for the current question and returns the
// per-player results sorted by cumulative score. Correct answers earn
// 10 points within 5 seconds, 5 points within 10 seconds and 2 points
// after that; wrong or missing answers earn nothing.
func (s *Session) ScoreRound() *types.RoundResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.current >= len(s.questions) {
		return nil
	}
	q := s.questions[s.current]

	results := make([]types.PlayerResult, 0, len(s.players))
	for _, p := range s.players {
		answer, answered := s.answers[p.ConnectionID]
		points := 0
		correct := answered && answer.Choice == q.Correct
		if correct {
			points = pointsForElapsed(answer.Elapsed)
			p.Score += points
		}
		results = append(results, types.PlayerResult{
			Pseudo:     p.Pseudo,
			IsCorrect:  correct,
			Points:     points,
			TotalScore: p.Score,
		})
	}

	// Stable sort keeps join order among equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalScore > results[j].TotalScore
	})

	return &types.RoundResult{
		CorrectAnswer:     q.Correct,
		CorrectAnswerText: q.Options[q.Correct-1],
		Results:           results,
	}
}

func pointsForElapsed(elapsed float64) int {
	switch {
	case elapsed <= 5:
		return 10
	case elapsed <= 10:
		return 5
	default:
		return 2
	}
}

// FinalRanking returns the roster sorted by cumulative score, ties
// preserving join order.
func (s *Session) FinalRanking() []types.RankingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	ranking := make([]types.RankingEntry, len(s.players))
	for i, p := range s.players {
		ranking[i] = types.RankingEntry{Pseudo: p.Pseudo, Score: p.Score}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	return ranking
}

// removePlayer drops the matching roster entry and reports whether the
// roster is now empty. The registry deletes empty sessions.
func (s *Session) removePlayer(connectionID string) (players []types.PlayerInfo, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.players[:0]
	for _, p := range s.players {
		if p.ConnectionID != connectionID {
			kept = append(kept, p)
		}
	}
	s.players = kept

	return s.playersLocked(), len(s.players) == 0
}
