// Package quiz implements the quiz session state machine: question
// sequencing, answer lock-in, scoring, progress and restart.
//
// A Session is not safe for concurrent use. Its owner feeds it one event at a
// time; every rejected event leaves the session unchanged.
package quiz

import (
	"fmt"
	"slices"

	"github.com/pavelanni/quiz/internal/model"
)

// Session holds a fixed question list and the mutable progress through it.
type Session struct {
	questions []model.Question

	current     int
	score       int
	selected    int
	locked      bool
	lastCorrect bool
}

// NewSession creates a session positioned on the first question.
// The questions are copied; the caller may reuse its slice.
func NewSession(questions []model.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	qs := make([]model.Question, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question at position %d: %w", i, err)
		}
		q.Choices = slices.Clone(q.Choices)
		qs[i] = q
	}
	return &Session{questions: qs}, nil
}

// Total returns the number of questions.
func (s *Session) Total() int { return len(s.questions) }

// Index returns the current question index; it equals Total when finished.
func (s *Session) Index() int { return s.current }

// Score returns the number of correct answers so far.
func (s *Session) Score() int { return s.score }

// Finished reports whether every question has been advanced past.
func (s *Session) Finished() bool { return s.current >= len(s.questions) }

// Selected returns the locked-in choice for the current question.
func (s *Session) Selected() (int, bool) {
	if !s.locked {
		return 0, false
	}
	return s.selected, true
}

// LastAnswerCorrect reports whether the locked-in choice was correct.
// The second value is false when no answer is locked in.
func (s *Session) LastAnswerCorrect() (bool, bool) {
	if !s.locked {
		return false, false
	}
	return s.lastCorrect, true
}

// Progress returns the fraction of questions entered: Index/Total.
// It is 1.0 only in the finished state.
func (s *Session) Progress() float64 {
	return float64(s.current) / float64(len(s.questions))
}

// CurrentQuestion returns the question at the current index, or ErrOutOfRange
// once the session is finished.
func (s *Session) CurrentQuestion() (model.Question, error) {
	if s.Finished() {
		return model.Question{}, fmt.Errorf("%w: index %d of %d", ErrOutOfRange, s.current, len(s.questions))
	}
	q := s.questions[s.current]
	q.Choices = slices.Clone(q.Choices)
	return q, nil
}

// SelectAnswer locks in a choice for the current question and scores it.
// Selecting on a locked question, a finished session, or with an out of range
// index returns ErrInvalidSelection and changes nothing.
func (s *Session) SelectAnswer(index int) (Outcome, error) {
	if s.Finished() {
		return Outcome{}, fmt.Errorf("%w: %w", ErrInvalidSelection, ErrFinished)
	}
	if s.locked {
		return Outcome{}, fmt.Errorf("%w: %w: question %d", ErrInvalidSelection, ErrAlreadyAnswered, s.questions[s.current].Number)
	}
	q := s.questions[s.current]
	if index < 0 || index >= len(q.Choices) {
		return Outcome{}, fmt.Errorf("%w: %w: %d not in [0,%d)", ErrInvalidSelection, ErrChoiceOutOfRange, index, len(q.Choices))
	}

	s.selected = index
	s.locked = true
	s.lastCorrect = index == q.CorrectChoice
	if s.lastCorrect {
		s.score++
	}
	return Outcome{
		Correct:       s.lastCorrect,
		CorrectChoice: q.CorrectChoice,
		ScoreAfter:    s.score,
	}, nil
}

// Advance moves past a locked question. It returns ErrPrematureAdvance if no
// answer has been locked in, which includes the finished state.
func (s *Session) Advance() (State, error) {
	if !s.locked {
		return s.State(), ErrPrematureAdvance
	}
	s.current++
	s.locked = false
	s.selected = 0
	s.lastCorrect = false
	return s.State(), nil
}

// Restart resets progress and score and returns to the first question.
func (s *Session) Restart() State {
	s.current = 0
	s.score = 0
	s.locked = false
	s.selected = 0
	s.lastCorrect = false
	return s.State()
}

// Result returns the final score. The second value is false until finished.
func (s *Session) Result() (Result, bool) {
	if !s.Finished() {
		return Result{}, false
	}
	r := Result{Score: s.score, Total: len(s.questions)}
	r.Percent = r.Fraction() * 100
	return r, true
}

// State returns a snapshot of the session for rendering.
func (s *Session) State() State {
	st := State{
		Phase:    PhaseInProgress,
		Index:    s.current,
		Score:    s.score,
		Total:    len(s.questions),
		Progress: s.Progress(),
	}
	if s.Finished() {
		st.Phase = PhaseFinished
		return st
	}
	q := s.questions[s.current]
	q.Choices = slices.Clone(q.Choices)
	st.Question = &q
	if s.locked {
		selected, correct := s.selected, q.CorrectChoice
		st.Selected = &selected
		st.CorrectChoice = &correct
		st.LastCorrect = s.lastCorrect
	}
	return st
}
