package database

import (
	"context"
	"path/filepath"
	"testing"

	"quizhub/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "quizhub-test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SeedsEmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	count, err := store.CountQuestions(context.Background())
	if err != nil {
		t.Fatalf("CountQuestions failed: %v", err)
	}
	if count != len(seedQuestions) {
		t.Errorf("expected %d seeded questions, got %d", len(seedQuestions), count)
	}
}

func TestStore_FetchRandom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	questions, err := store.FetchRandom(ctx, 5)
	if err != nil {
		t.Fatalf("FetchRandom failed: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}

	// Sampled without replacement.
	seen := make(map[int64]bool)
	for _, q := range questions {
		if seen[q.ID] {
			t.Errorf("question %d returned twice in one draw", q.ID)
		}
		seen[q.ID] = true
		if q.Correct < 1 || q.Correct > 4 {
			t.Errorf("question %d has out-of-range correct option %d", q.ID, q.Correct)
		}
		for i, opt := range q.Options {
			if opt == "" {
				t.Errorf("question %d has empty option %d", q.ID, i+1)
			}
		}
	}
}

func TestStore_FetchRandomBeyondInventory(t *testing.T) {
	store := newTestStore(t)

	questions, err := store.FetchRandom(context.Background(), 1000)
	if err != nil {
		t.Fatalf("FetchRandom failed: %v", err)
	}
	if len(questions) != len(seedQuestions) {
		t.Errorf("oversized request should return the whole inventory, got %d", len(questions))
	}
}

func TestStore_AddQuestion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddQuestion(ctx, types.Question{
		Text:    "What does CPU stand for?",
		Options: [4]string{"Central Processing Unit", "Computer Power Unit", "Core Program Utility", "Control Panel Unit"},
		Correct: 1,
	})
	if err != nil {
		t.Fatalf("AddQuestion failed: %v", err)
	}
	if id == 0 {
		t.Error("expected a non-zero question ID")
	}

	count, err := store.CountQuestions(ctx)
	if err != nil {
		t.Fatalf("CountQuestions failed: %v", err)
	}
	if count != len(seedQuestions)+1 {
		t.Errorf("expected %d questions after insert, got %d", len(seedQuestions)+1, count)
	}
}

func TestStore_ReopenDoesNotReseed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quizhub-test.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store, err = NewStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	count, err := store.CountQuestions(context.Background())
	if err != nil {
		t.Fatalf("CountQuestions failed: %v", err)
	}
	if count != len(seedQuestions) {
		t.Errorf("reopening must not duplicate the seed set, got %d", count)
	}
}
