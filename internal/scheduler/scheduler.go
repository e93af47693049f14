package scheduler

import (
	"log"
	"sync"
	"time"

	"quizhub/internal/game"
	"quizhub/pkg/interfaces"
	"quizhub/pkg/types"
)

// Timings holds the three delays that drive a game. Tests substitute
// millisecond-scale values.
type Timings struct {
	PreGame     time.Duration // wait after game-started before round 1
	Countdown   time.Duration // answer window per question
	ResultDelay time.Duration // result display before the next round
}

// DefaultTimings returns the production delays: 2s pre-game, 10s per
// question, 5s of result display.
func DefaultTimings() Timings {
	return Timings{
		PreGame:     2 * time.Second,
		Countdown:   10 * time.Second,
		ResultDelay: 5 * time.Second,
	}
}

// roundPhase tracks where a session sits in the round cycle. Answers
// may close a round early only while its countdown is running.
type roundPhase int

const (
	phasePreGame roundPhase = iota
	phaseCounting
	phaseRevealing
)

// roundState tracks the timer for one session's active round. gen is a
// generation counter: every transition bumps it, and a timer callback
// only acts if the generation it captured is still current. That makes
// the deadline-vs-all-answered race safe without cancellation channels.
// phase guards the event-driven path the same way gen guards timers.
type roundState struct {
	gen   uint64
	phase roundPhase
	timer *time.Timer
}

// Scheduler drives round timing for every active session: the pre-game
// delay, the per-question deadline, early advance when everyone has
// answered, the result display interval and the end-of-game broadcast.
type Scheduler struct {
	games   *game.Registry
	emitter interfaces.Emitter
	timings Timings

	mu     sync.Mutex
	rounds map[string]*roundState
}

// NewScheduler creates a scheduler for the given registry and emitter.
func NewScheduler(games *game.Registry, emitter interfaces.Emitter, timings Timings) *Scheduler {
	return &Scheduler{
		games:   games,
		emitter: emitter,
		timings: timings,
		rounds:  make(map[string]*roundState),
	}
}

// Begin schedules the first round of a freshly started session after
// the pre-game delay. Calling Begin twice for the same code is a no-op.
func (s *Scheduler) Begin(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.rounds[code]; running {
		return
	}
	rs := &roundState{phase: phasePreGame}
	s.rounds[code] = rs
	rs.timer = time.AfterFunc(s.timings.PreGame, func() {
		s.nextQuestion(code)
	})
}

// PlayerAnswered is called after each accepted answer. When the whole
// roster has answered while the countdown is running, the round closes
// immediately and the deadline timer is cancelled. Outside the
// countdown (pre-game delay, result display) it is a no-op: a full
// ledger there must not close a round that is not open.
func (s *Scheduler) PlayerAnswered(code string) {
	if !s.games.AllAnswered(code) {
		return
	}

	s.mu.Lock()
	rs, ok := s.rounds[code]
	if !ok || rs.phase != phaseCounting {
		s.mu.Unlock()
		return
	}
	gen := rs.gen
	s.mu.Unlock()

	s.finishRound(code, gen)
}

// Cancel releases all timer state for a session, typically because its
// last player left. Idempotent.
func (s *Scheduler) Cancel(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(code)
}

func (s *Scheduler) cancelLocked(code string) {
	rs, ok := s.rounds[code]
	if !ok {
		return
	}
	rs.gen++
	if rs.timer != nil {
		rs.timer.Stop()
	}
	delete(s.rounds, code)
}

// Stop cancels every active session's timers. Used at shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for code := range s.rounds {
		s.cancelLocked(code)
	}
}

// nextQuestion advances the session and either broadcasts the next
// round or, at end of game, the final ranking.
func (s *Scheduler) nextQuestion(code string) {
	payload, finished, ok := s.games.AdvanceRound(code)
	if !ok {
		// Session destroyed while the result delay was running.
		s.Cancel(code)
		return
	}

	if finished {
		ranking := s.games.FinalRanking(code)
		s.emitter.Broadcast(code, types.EventGameEnded, types.GameEndedPayload{Ranking: ranking})
		s.Cancel(code)
		log.Printf("Game ended: code=%s", code)
		return
	}

	payload.Timer = int(s.timings.Countdown / time.Second)
	s.emitter.Broadcast(code, types.EventNewQuestion, payload)

	s.mu.Lock()
	rs, active := s.rounds[code]
	if !active {
		s.mu.Unlock()
		return
	}
	rs.gen++
	rs.phase = phaseCounting
	gen := rs.gen
	rs.timer = time.AfterFunc(s.timings.Countdown, func() {
		s.finishRound(code, gen)
	})
	s.mu.Unlock()
}

// finishRound closes the round identified by gen: it scores the
// question, broadcasts the result and schedules the next round. Both
// the deadline timer and the all-answered path funnel through here; the
// generation check ensures only the first caller acts.
func (s *Scheduler) finishRound(code string, gen uint64) {
	s.mu.Lock()
	rs, ok := s.rounds[code]
	if !ok || rs.gen != gen {
		s.mu.Unlock()
		return
	}
	rs.gen++
	rs.phase = phaseRevealing
	if rs.timer != nil {
		rs.timer.Stop()
	}
	s.mu.Unlock()

	result, ok := s.games.ScoreRound(code)
	if !ok {
		s.Cancel(code)
		return
	}
	s.emitter.Broadcast(code, types.EventQuestionResult, result)

	s.mu.Lock()
	rs, active := s.rounds[code]
	if !active {
		s.mu.Unlock()
		return
	}
	rs.timer = time.AfterFunc(s.timings.ResultDelay, func() {
		s.nextQuestion(code)
	})
	s.mu.Unlock()
}
