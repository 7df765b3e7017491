// Package questions parses question files and keeps the question bank in sync
// with them.
package questions

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pavelanni/quiz/internal/model"
	"github.com/pavelanni/quiz/internal/store"
)

// ErrEmptyBank is returned by Load when the bank holds no questions.
var ErrEmptyBank = errors.New("question bank is empty")

//go:embed data/football.json
var defaultQuestions []byte

// Parse decodes a questions file. It accepts either a JSON array of questions
// or a bank export document. Questions without a number get their 1-based
// position. Every question is validated.
func Parse(data []byte) ([]model.Question, error) {
	var imports []model.QuestionImport
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var exp model.BankExport
		if err := json.Unmarshal(trimmed, &exp); err != nil {
			return nil, fmt.Errorf("decode export document: %w", err)
		}
		imports = exp.Questions
	} else if err := json.Unmarshal(trimmed, &imports); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	if len(imports) == 0 {
		return nil, fmt.Errorf("no questions found")
	}

	out := make([]model.Question, 0, len(imports))
	for i, qi := range imports {
		q := model.Question{
			Number:        qi.Number,
			Text:          qi.Text,
			Choices:       qi.Choices,
			CorrectChoice: qi.Correct,
		}
		if q.Number == 0 {
			q.Number = i + 1
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// Default returns the built-in question table.
func Default() []model.Question {
	qs, err := Parse(defaultQuestions)
	if err != nil {
		panic("questions: invalid embedded table: " + err.Error())
	}
	return qs
}

// Import loads each file into the bank once, keyed by its sha256. Files that
// were already imported unchanged are skipped; changed files are skipped with
// a warning unless replace is set. With replace, every file is read and
// parsed before the bank is rebuilt from them in one step, so a bad file
// leaves the bank as it was. Importing into a seeded bank drops the built-in
// table first.
func Import(s *store.Store, paths []string, replace bool) (int, error) {
	if replace {
		return replaceAll(s, paths)
	}

	imported := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return imported, fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := s.GetImportedFileHash(path)
		if err != nil {
			return imported, fmt.Errorf("check import status for %s: %w", path, err)
		}

		if storedHash == hash {
			slog.Info("questions file unchanged, skipping", "path", path)
			continue
		}
		if storedHash != "" {
			slog.Warn("questions file changed since last import, skipping; use import --replace to rebuild the bank",
				"path", path)
			continue
		}

		qs, err := Parse(data)
		if err != nil {
			return imported, fmt.Errorf("parse %s: %w", path, err)
		}
		seeded, err := s.Seeded()
		if err != nil {
			return imported, fmt.Errorf("check seeded bank: %w", err)
		}
		if err := s.AppendQuestions(qs, path, hash); err != nil {
			return imported, fmt.Errorf("insert questions from %s: %w", path, err)
		}
		if seeded {
			slog.Info("replaced built-in questions", "path", path)
		}
		imported += len(qs)
		slog.Info("imported questions", "path", path, "count", len(qs))
	}
	return imported, nil
}

func replaceAll(s *store.Store, paths []string) (int, error) {
	var all []model.Question
	hashes := make(map[string]string, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}
		qs, err := Parse(data)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", path, err)
		}
		all = append(all, qs...)
		hashes[path] = sha256sum(data)
	}

	if err := s.ReplaceQuestions(all, hashes); err != nil {
		return 0, fmt.Errorf("replace bank: %w", err)
	}
	slog.Info("rebuilt question bank", "files", len(paths), "count", len(all))
	return len(all), nil
}

// Seed inserts the built-in table when the bank is empty.
func Seed(s *store.Store) error {
	count, err := s.QuestionCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	qs := Default()
	if err := s.SeedQuestions(qs); err != nil {
		return fmt.Errorf("seed default questions: %w", err)
	}
	slog.Info("seeded default questions", "count", len(qs))
	return nil
}

// Load returns the bank's questions in session order.
func Load(s *store.Store) ([]model.Question, error) {
	qs, err := s.ListQuestions()
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(qs) == 0 {
		return nil, ErrEmptyBank
	}
	return qs, nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
