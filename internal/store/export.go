package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/quiz/internal/model"
)

// Export builds a re-importable document from the question bank.
func (s *Store) Export(title string) (model.BankExport, error) {
	questions, err := s.ListQuestions()
	if err != nil {
		return model.BankExport{}, fmt.Errorf("list questions: %w", err)
	}

	out := make([]model.QuestionImport, 0, len(questions))
	for _, q := range questions {
		out = append(out, model.QuestionImport{
			Number:  q.Number,
			Text:    q.Text,
			Choices: q.Choices,
			Correct: q.CorrectChoice,
		})
	}

	return model.BankExport{
		Title:        title,
		ExportedAt:   time.Now().UTC(),
		NumQuestions: len(out),
		Questions:    out,
	}, nil
}
