package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
	"quizhub/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question TEXT NOT NULL,
	option1 TEXT NOT NULL,
	option2 TEXT NOT NULL,
	option3 TEXT NOT NULL,
	option4 TEXT NOT NULL,
	correct_option INTEGER NOT NULL CHECK (correct_option BETWEEN 1 AND 4),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// Store is a SQLite-backed question repository. It implements
// interfaces.QuestionRepository; session state itself never touches the
// database.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the question database, ensures the schema
// exists and seeds a starter question set when the table is empty.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{db: db}

	count, err := s.CountQuestions(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if count == 0 {
		if err := s.seed(context.Background()); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Printf("Question store seeded: questions=%d", len(seedQuestions))
	}

	return s, nil
}

// FetchRandom returns up to n questions sampled without replacement,
// re-randomized on every call.
func (s *Store) FetchRandom(ctx context.Context, n int) ([]types.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, option1, option2, option3, option4, correct_option
		 FROM questions ORDER BY RANDOM() LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	defer rows.Close()

	var questions []types.Question
	for rows.Next() {
		var q types.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.Correct); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}

	return questions, nil
}

// AddQuestion inserts a question and returns its ID.
func (s *Store) AddQuestion(ctx context.Context, q types.Question) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (question, option1, option2, option3, option4, correct_option)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct)
	if err != nil {
		return 0, fmt.Errorf("failed to insert question: %w", err)
	}
	return result.LastInsertId()
}

// CountQuestions returns the size of the question inventory.
func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seed(ctx context.Context) error {
	for _, q := range seedQuestions {
		if _, err := s.AddQuestion(ctx, q); err != nil {
			return fmt.Errorf("failed to seed questions: %w", err)
		}
	}
	return nil
}
