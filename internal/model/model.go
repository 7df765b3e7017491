package model

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidQuestion is returned when a question breaks the data model invariants.
var ErrInvalidQuestion = errors.New("invalid question")

// Question represents a multiple-choice quiz question.
type Question struct {
	ID            int64    `json:"id,omitempty"`
	Number        int      `json:"number"`
	Text          string   `json:"text"`
	Choices       []string `json:"choices"`
	CorrectChoice int      `json:"correct"`
}

// Validate checks the question invariants: a positive number, a prompt,
// at least two choices and a correct choice that indexes into them.
func (q Question) Validate() error {
	switch {
	case q.Number <= 0:
		return fmt.Errorf("%w: number must be positive, got %d", ErrInvalidQuestion, q.Number)
	case q.Text == "":
		return fmt.Errorf("%w: question %d has no text", ErrInvalidQuestion, q.Number)
	case len(q.Choices) < 2:
		return fmt.Errorf("%w: question %d needs at least 2 choices, got %d", ErrInvalidQuestion, q.Number, len(q.Choices))
	case q.CorrectChoice < 0 || q.CorrectChoice >= len(q.Choices):
		return fmt.Errorf("%w: question %d correct choice %d out of range [0,%d)",
			ErrInvalidQuestion, q.Number, q.CorrectChoice, len(q.Choices))
	}
	return nil
}

// CorrectAnswer returns the text of the correct choice.
func (q Question) CorrectAnswer() string {
	return q.Choices[q.CorrectChoice]
}

// QuizConfig holds runtime parameters set via CLI flags.
type QuizConfig struct {
	Title         string
	BasePath      string // URL prefix for sub-path deployments (e.g. "/ru")
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
}

// QuestionImport is used for loading questions from JSON.
type QuestionImport struct {
	Number  int      `json:"number,omitempty"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
	Correct int      `json:"correct"`
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}
