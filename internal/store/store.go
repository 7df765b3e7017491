package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pavelanni/quiz/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		number INTEGER NOT NULL,
		text TEXT NOT NULL,
		choices TEXT NOT NULL,
		correct_choice INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quiz_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertQuestions(ex execer, qs []model.Question) error {
	for _, q := range qs {
		choices, err := json.Marshal(q.Choices)
		if err != nil {
			return fmt.Errorf("encode choices: %w", err)
		}
		_, err = ex.Exec(
			`INSERT INTO questions (number, text, choices, correct_choice) VALUES (?, ?, ?, ?)`,
			q.Number, q.Text, string(choices), q.CorrectChoice,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedQuestions stores the built-in table and marks the bank as seeded, so
// the first real import replaces it.
func (s *Store) SeedQuestions(qs []model.Question) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertQuestions(tx, qs); err != nil {
		return err
	}
	if err := setMetadata(tx, seededKey, "true"); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendQuestions adds the questions of one file after those already in the
// bank and records the file's hash, all in one transaction. A seeded bank is
// emptied first.
func (s *Store) AppendQuestions(qs []model.Question, path, hash string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seeded int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM quiz_metadata WHERE key = ?`, seededKey).Scan(&seeded); err != nil {
		return err
	}
	if seeded > 0 {
		if _, err := tx.Exec(`DELETE FROM questions`); err != nil {
			return fmt.Errorf("drop seeded questions: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM quiz_metadata WHERE key = ?`, seededKey); err != nil {
			return err
		}
	}
	if err := insertQuestions(tx, qs); err != nil {
		return err
	}
	if err := setMetadata(tx, importKeyPrefix+path, hash); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceQuestions empties the bank and its import records, then stores qs
// and the given path to hash records. Nothing changes if any step fails.
func (s *Store) ReplaceQuestions(qs []model.Question, hashes map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM quiz_metadata WHERE key LIKE ? OR key = ?`, importKeyPrefix+"%", seededKey); err != nil {
		return fmt.Errorf("clear import records: %w", err)
	}
	if err := insertQuestions(tx, qs); err != nil {
		return err
	}
	for path, hash := range hashes {
		if err := setMetadata(tx, importKeyPrefix+path, hash); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListQuestions returns all questions in insertion order, so every imported
// file keeps its own order.
func (s *Store) ListQuestions() ([]model.Question, error) {
	rows, err := s.db.Query(`SELECT id, number, text, choices, correct_choice FROM questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// QuestionCount returns the number of questions in the database.
func (s *Store) QuestionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(sc scanner) (model.Question, error) {
	var q model.Question
	var choices string
	if err := sc.Scan(&q.ID, &q.Number, &q.Text, &choices, &q.CorrectChoice); err != nil {
		return q, err
	}
	if err := json.Unmarshal([]byte(choices), &q.Choices); err != nil {
		return q, fmt.Errorf("decode choices of question %d: %w", q.ID, err)
	}
	return q, nil
}
