package scheduler

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"quizhub/internal/game"
	"quizhub/pkg/types"
)

// recordingEmitter captures broadcasts in order.
type recordingEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Room    string
	Event   string
	Payload any
}

func (e *recordingEmitter) Broadcast(room, event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{Room: room, Event: event, Payload: payload})
}

func (e *recordingEmitter) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, len(e.events))
	for i, ev := range e.events {
		names[i] = ev.Event
	}
	return names
}

func (e *recordingEmitter) last() (recordedEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.events) == 0 {
		return recordedEvent{}, false
	}
	return e.events[len(e.events)-1], true
}

// waitForSequence polls until the recorded event names equal want.
func (e *recordingEmitter) waitForSequence(t *testing.T, timeout time.Duration, want ...string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if reflect.DeepEqual(e.names(), want) {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("expected event sequence %v, saw %v", want, e.names())
}

// stubRepository serves identical questions with option 1 correct.
type stubRepository struct{ n int }

func (r *stubRepository) FetchRandom(ctx context.Context, n int) ([]types.Question, error) {
	if n > r.n {
		n = r.n
	}
	questions := make([]types.Question, n)
	for i := range questions {
		questions[i] = types.Question{
			ID:      int64(i + 1),
			Text:    "question",
			Options: [4]string{"right", "wrong", "wrong", "wrong"},
			Correct: 1,
		}
	}
	return questions, nil
}

func fastTimings() Timings {
	return Timings{
		PreGame:     10 * time.Millisecond,
		Countdown:   60 * time.Millisecond,
		ResultDelay: 10 * time.Millisecond,
	}
}

// startedGame builds a playing session with the given roster size and
// returns everything a scheduler test needs.
func startedGame(t *testing.T, questions, players int, timings Timings) (*game.Registry, *Scheduler, *recordingEmitter, string) {
	t.Helper()

	games := game.NewRegistry(&stubRepository{n: questions})
	emitter := &recordingEmitter{}
	sched := NewScheduler(games, emitter, timings)
	t.Cleanup(sched.Stop)

	code, err := games.CreateSession(context.Background(), "host", questions)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	pseudos := []string{"alice", "bob", "carol", "dave"}
	ids := []string{"host", "conn2", "conn3", "conn4"}
	for i := 0; i < players; i++ {
		if _, err := games.Join(code, ids[i], pseudos[i]); err != nil {
			t.Fatalf("join failed: %v", err)
		}
	}
	if err := games.Start(code, "host"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	return games, sched, emitter, code
}

func TestScheduler_TimeoutPath(t *testing.T) {
	_, sched, emitter, code := startedGame(t, 1, 1, fastTimings())

	// Nobody answers; the deadline timer closes the round.
	sched.Begin(code)

	emitter.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult, types.EventGameEnded)

	last, _ := emitter.last()
	ended, ok := last.Payload.(types.GameEndedPayload)
	if !ok {
		t.Fatalf("game-ended payload has wrong type: %T", last.Payload)
	}
	if len(ended.Ranking) != 1 || ended.Ranking[0].Score != 0 {
		t.Errorf("unanswered game should end with a zero score, got %+v", ended.Ranking)
	}
}

func TestScheduler_EarlyAdvanceOnAllAnswered(t *testing.T) {
	// Countdown long enough that only the all-answered path can close
	// the round within the test's patience.
	timings := fastTimings()
	timings.Countdown = 5 * time.Second
	games, sched, emitter, code := startedGame(t, 1, 2, timings)

	sched.Begin(code)
	emitter.waitForSequence(t, 2*time.Second, types.EventNewQuestion)

	if _, accepted := games.SubmitAnswer(code, "host", 1); !accepted {
		t.Fatal("answer should be accepted")
	}
	sched.PlayerAnswered(code)
	time.Sleep(20 * time.Millisecond)
	if names := emitter.names(); len(names) != 1 {
		t.Fatalf("round must stay open until everyone answered, saw %v", names)
	}

	if _, accepted := games.SubmitAnswer(code, "conn2", 2); !accepted {
		t.Fatal("second answer should be accepted")
	}
	sched.PlayerAnswered(code)

	emitter.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult, types.EventGameEnded)
}

func TestScheduler_BothPathsEmitIdenticalShape(t *testing.T) {
	// Timeout path.
	_, schedA, emitterA, codeA := startedGame(t, 1, 1, fastTimings())
	schedA.Begin(codeA)
	emitterA.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult, types.EventGameEnded)

	// All-answered path.
	timings := fastTimings()
	timings.Countdown = 5 * time.Second
	gamesB, schedB, emitterB, codeB := startedGame(t, 1, 1, timings)
	schedB.Begin(codeB)
	emitterB.waitForSequence(t, 2*time.Second, types.EventNewQuestion)
	gamesB.SubmitAnswer(codeB, "host", 1)
	schedB.PlayerAnswered(codeB)
	emitterB.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult, types.EventGameEnded)

	if !reflect.DeepEqual(emitterA.names(), emitterB.names()) {
		t.Errorf("timeout and all-answered paths diverge: %v vs %v", emitterA.names(), emitterB.names())
	}
}

func TestScheduler_TwoRoundGame(t *testing.T) {
	games, sched, emitter, code := startedGame(t, 2, 1, fastTimings())

	sched.Begin(code)
	emitter.waitForSequence(t, 2*time.Second, types.EventNewQuestion)

	games.SubmitAnswer(code, "host", 1)
	sched.PlayerAnswered(code)
	emitter.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult, types.EventNewQuestion)

	games.SubmitAnswer(code, "host", 1)
	sched.PlayerAnswered(code)
	emitter.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult,
		types.EventNewQuestion, types.EventQuestionResult, types.EventGameEnded)

	last, _ := emitter.last()
	ended := last.Payload.(types.GameEndedPayload)
	if ended.Ranking[0].Score != 20 {
		t.Errorf("two fast correct answers should total 20 points, got %+v", ended.Ranking)
	}
}

func TestScheduler_StaleDeadlineTimerIsNoOp(t *testing.T) {
	// Short countdown, long result delay: the round 1 deadline timer
	// would fire during result display if early advance failed to
	// cancel or invalidate it.
	timings := Timings{
		PreGame:     10 * time.Millisecond,
		Countdown:   40 * time.Millisecond,
		ResultDelay: 150 * time.Millisecond,
	}
	games, sched, emitter, code := startedGame(t, 1, 1, timings)

	sched.Begin(code)
	emitter.waitForSequence(t, 2*time.Second, types.EventNewQuestion)

	games.SubmitAnswer(code, "host", 1)
	sched.PlayerAnswered(code)

	emitter.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult, types.EventGameEnded)

	// Let the original deadline (and then some) pass; nothing new may fire.
	time.Sleep(200 * time.Millisecond)
	if names := emitter.names(); len(names) != 3 {
		t.Errorf("stale timer produced extra events: %v", names)
	}
}

func TestScheduler_AnswerDuringPreGameDelayIsIgnored(t *testing.T) {
	timings := fastTimings()
	timings.PreGame = 60 * time.Millisecond
	games, sched, emitter, code := startedGame(t, 1, 1, timings)

	sched.Begin(code)

	// Submissions before the first question are dropped, and a stray
	// all-answered signal must not close a round that never opened:
	// the game still has to deal question 1 and run to completion.
	if _, accepted := games.SubmitAnswer(code, "host", 1); accepted {
		t.Fatal("answer before the first question should be dropped")
	}
	sched.PlayerAnswered(code)

	emitter.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult, types.EventGameEnded)
}

func TestScheduler_LateAnswerDuringResultsIsIgnored(t *testing.T) {
	// alice answers in time, bob only once the deadline has already
	// revealed the results. His submission completes the ledger, but
	// the closed round must not be scored or broadcast a second time.
	timings := Timings{
		PreGame:     10 * time.Millisecond,
		Countdown:   60 * time.Millisecond,
		ResultDelay: 250 * time.Millisecond,
	}
	games, sched, emitter, code := startedGame(t, 1, 2, timings)

	sched.Begin(code)
	emitter.waitForSequence(t, 2*time.Second, types.EventNewQuestion)

	if _, accepted := games.SubmitAnswer(code, "host", 1); !accepted {
		t.Fatal("answer during the countdown should be accepted")
	}
	sched.PlayerAnswered(code)

	emitter.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult)

	if _, accepted := games.SubmitAnswer(code, "conn2", 1); !accepted {
		t.Fatal("late answer should still be recorded")
	}
	sched.PlayerAnswered(code)

	emitter.waitForSequence(t, 2*time.Second,
		types.EventNewQuestion, types.EventQuestionResult, types.EventGameEnded)

	last, _ := emitter.last()
	ended := last.Payload.(types.GameEndedPayload)
	if ended.Ranking[0].Score != 10 {
		t.Errorf("one correct answer must be awarded exactly once, got %+v", ended.Ranking)
	}
}

func TestScheduler_CancelReleasesRound(t *testing.T) {
	_, sched, emitter, code := startedGame(t, 3, 1, fastTimings())

	sched.Begin(code)
	emitter.waitForSequence(t, 2*time.Second, types.EventNewQuestion)

	sched.Cancel(code)
	sched.Cancel(code) // idempotent

	time.Sleep(150 * time.Millisecond)
	if names := emitter.names(); len(names) != 1 {
		t.Errorf("cancelled session emitted further events: %v", names)
	}
}

func TestScheduler_BeginIsIdempotent(t *testing.T) {
	_, sched, emitter, code := startedGame(t, 5, 1, fastTimings())

	sched.Begin(code)
	sched.Begin(code)

	emitter.waitForSequence(t, 2*time.Second, types.EventNewQuestion)
	time.Sleep(20 * time.Millisecond)

	count := 0
	for _, name := range emitter.names() {
		if name == types.EventNewQuestion {
			count++
		}
	}
	if count != 1 {
		t.Errorf("double Begin produced %d first questions", count)
	}
}
