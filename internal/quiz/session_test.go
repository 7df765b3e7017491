package quiz

import (
	"errors"
	"testing"

	"github.com/pavelanni/quiz/internal/model"
)

func testQuestions(correct ...int) []model.Question {
	qs := make([]model.Question, len(correct))
	for i, c := range correct {
		qs[i] = model.Question{
			Number:        i + 1,
			Text:          "Question?",
			Choices:       []string{"A", "B", "C"},
			CorrectChoice: c,
		}
	}
	return qs
}

func newTestSession(t *testing.T, correct ...int) *Session {
	t.Helper()
	s, err := NewSession(testQuestions(correct...))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionValidation(t *testing.T) {
	tests := []struct {
		name      string
		questions []model.Question
		wantErr   error
	}{
		{"empty", nil, ErrNoQuestions},
		{"one choice", []model.Question{{Number: 1, Text: "Q", Choices: []string{"A"}}}, model.ErrInvalidQuestion},
		{"correct out of range", []model.Question{{Number: 1, Text: "Q", Choices: []string{"A", "B"}, CorrectChoice: 2}}, model.ErrInvalidQuestion},
		{"negative correct", []model.Question{{Number: 1, Text: "Q", Choices: []string{"A", "B"}, CorrectChoice: -1}}, model.ErrInvalidQuestion},
		{"zero number", []model.Question{{Number: 0, Text: "Q", Choices: []string{"A", "B"}}}, model.ErrInvalidQuestion},
		{"valid", testQuestions(0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(tt.questions)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSession() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSessionCopiesQuestions(t *testing.T) {
	qs := testQuestions(1)
	s, err := NewSession(qs)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	qs[0].Choices[1] = "changed"
	qs[0].CorrectChoice = 0

	q, err := s.CurrentQuestion()
	if err != nil {
		t.Fatalf("CurrentQuestion: %v", err)
	}
	if q.Choices[1] != "B" || q.CorrectChoice != 1 {
		t.Errorf("session question changed through caller slice: %+v", q)
	}
}

func TestScenarioThreeQuestions(t *testing.T) {
	s := newTestSession(t, 1, 0, 2)

	st := s.State()
	if st.Phase != PhaseInProgress || st.Index != 0 {
		t.Fatalf("initial state = %+v, want in_progress at 0", st)
	}

	steps := []struct {
		choice      int
		wantCorrect bool
		wantScore   int
	}{
		{1, true, 1},
		{1, false, 1},
		{2, true, 2},
	}

	for i, step := range steps {
		out, err := s.SelectAnswer(step.choice)
		if err != nil {
			t.Fatalf("step %d SelectAnswer: %v", i, err)
		}
		if out.Correct != step.wantCorrect || out.ScoreAfter != step.wantScore {
			t.Errorf("step %d outcome = %+v, want correct=%v scoreAfter=%d", i, out, step.wantCorrect, step.wantScore)
		}
		st, err = s.Advance()
		if err != nil {
			t.Fatalf("step %d Advance: %v", i, err)
		}
		if i < len(steps)-1 && (st.Phase != PhaseInProgress || st.Index != i+1) {
			t.Errorf("step %d state = %+v, want in_progress at %d", i, st, i+1)
		}
	}

	if !st.Finished() {
		t.Fatalf("expected finished, got %+v", st)
	}
	if st.Score != 2 || st.Total != 3 {
		t.Errorf("finished score=%d total=%d, want 2/3", st.Score, st.Total)
	}
	res, ok := s.Result()
	if !ok {
		t.Fatal("Result() not available after finish")
	}
	if res.Score != 2 || res.Total != 3 {
		t.Errorf("Result() = %+v, want 2/3", res)
	}
}

func TestSelectAnswerTwice(t *testing.T) {
	s := newTestSession(t, 0, 0)

	if _, err := s.SelectAnswer(0); err != nil {
		t.Fatalf("first SelectAnswer: %v", err)
	}
	for _, choice := range []int{0, 1} {
		_, err := s.SelectAnswer(choice)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("second SelectAnswer(%d) error = %v, want ErrInvalidSelection", choice, err)
		}
		if !errors.Is(err, ErrAlreadyAnswered) {
			t.Errorf("second SelectAnswer(%d) error = %v, want ErrAlreadyAnswered", choice, err)
		}
	}

	if s.Score() != 1 {
		t.Errorf("score = %d, want 1", s.Score())
	}
	sel, ok := s.Selected()
	if !ok || sel != 0 {
		t.Errorf("Selected() = %d, %v; want 0, true", sel, ok)
	}
	correct, ok := s.LastAnswerCorrect()
	if !ok || !correct {
		t.Errorf("LastAnswerCorrect() = %v, %v; want true, true", correct, ok)
	}
}

func TestSelectAnswerOutOfRange(t *testing.T) {
	s := newTestSession(t, 0)

	for _, choice := range []int{5, 3, -1} {
		_, err := s.SelectAnswer(choice)
		if !errors.Is(err, ErrInvalidSelection) || !errors.Is(err, ErrChoiceOutOfRange) {
			t.Errorf("SelectAnswer(%d) error = %v, want ErrInvalidSelection/ErrChoiceOutOfRange", choice, err)
		}
	}
	if s.Score() != 0 {
		t.Errorf("score = %d, want 0", s.Score())
	}
	if _, ok := s.Selected(); ok {
		t.Error("question locked after rejected selections")
	}

	// The question is still answerable.
	if _, err := s.SelectAnswer(2); err != nil {
		t.Errorf("SelectAnswer(2) after rejections: %v", err)
	}
}

func TestAdvanceBeforeAnswer(t *testing.T) {
	s := newTestSession(t, 0, 1)

	st, err := s.Advance()
	if !errors.Is(err, ErrPrematureAdvance) {
		t.Fatalf("Advance() error = %v, want ErrPrematureAdvance", err)
	}
	if s.Index() != 0 || st.Index != 0 {
		t.Errorf("index moved to %d after rejected advance", s.Index())
	}
}

func TestFinishedState(t *testing.T) {
	s := newTestSession(t, 1)
	if _, err := s.SelectAnswer(0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := s.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if !s.Finished() {
		t.Fatal("expected finished")
	}
	if _, err := s.CurrentQuestion(); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("CurrentQuestion() error = %v, want ErrOutOfRange", err)
	}
	if _, err := s.SelectAnswer(0); !errors.Is(err, ErrInvalidSelection) || !errors.Is(err, ErrFinished) {
		t.Errorf("SelectAnswer() after finish error = %v, want ErrInvalidSelection/ErrFinished", err)
	}
	if _, err := s.Advance(); !errors.Is(err, ErrPrematureAdvance) {
		t.Errorf("Advance() after finish error = %v, want ErrPrematureAdvance", err)
	}
	if s.Index() != 1 || s.Score() != 0 {
		t.Errorf("finished state changed: index=%d score=%d", s.Index(), s.Score())
	}
	st := s.State()
	if st.Question != nil {
		t.Error("finished state exposes a question")
	}
}

func TestRestart(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Session)
	}{
		{"fresh", func(s *Session) {}},
		{"locked", func(s *Session) { _, _ = s.SelectAnswer(1) }},
		{"mid quiz", func(s *Session) {
			_, _ = s.SelectAnswer(1)
			_, _ = s.Advance()
		}},
		{"finished", func(s *Session) {
			for range 2 {
				_, _ = s.SelectAnswer(1)
				_, _ = s.Advance()
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, 1, 1)
			tt.setup(s)

			st := s.Restart()
			if st.Phase != PhaseInProgress || st.Index != 0 || st.Score != 0 || st.Selected != nil {
				t.Errorf("Restart() = %+v", st)
			}
			if s.Index() != 0 || s.Score() != 0 {
				t.Errorf("after restart index=%d score=%d", s.Index(), s.Score())
			}
			if _, ok := s.Selected(); ok {
				t.Error("selection survived restart")
			}
			if st.Question == nil || st.Question.Number != 1 {
				t.Errorf("restart question = %+v, want number 1", st.Question)
			}
		})
	}
}

func TestProgressCountsQuestionsEntered(t *testing.T) {
	s := newTestSession(t, 0, 0, 0, 0)

	want := []float64{0, 0.25, 0.5, 0.75}
	for i, w := range want {
		if got := s.Progress(); got != w {
			t.Errorf("question %d progress before answer = %v, want %v", i, got, w)
		}
		if _, err := s.SelectAnswer(0); err != nil {
			t.Fatalf("SelectAnswer: %v", err)
		}
		if got := s.Progress(); got != w {
			t.Errorf("question %d progress after answer = %v, want %v", i, got, w)
		}
		if _, err := s.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	if got := s.Progress(); got != 1.0 {
		t.Errorf("finished progress = %v, want 1.0", got)
	}
}

func TestScoreBounds(t *testing.T) {
	s := newTestSession(t, 0, 1, 2, 0, 1)
	choices := []int{0, 0, 2, 9, 1, 1}

	for _, c := range choices {
		_, _ = s.SelectAnswer(c)
		_, _ = s.SelectAnswer(c)
		if s.Score() < 0 || s.Score() > s.Total() {
			t.Fatalf("score %d out of bounds [0,%d]", s.Score(), s.Total())
		}
		_, _ = s.Advance()
	}
}

func TestStateExposesFeedback(t *testing.T) {
	s := newTestSession(t, 2)

	st := s.State()
	if st.Locked() || st.CorrectChoice != nil {
		t.Fatalf("unanswered state exposes feedback: %+v", st)
	}

	if _, err := s.SelectAnswer(1); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	st = s.State()
	if !st.Locked() || *st.Selected != 1 {
		t.Fatalf("locked state selected = %v", st.Selected)
	}
	if st.LastCorrect {
		t.Error("LastCorrect = true for a wrong answer")
	}
	if st.CorrectChoice == nil || *st.CorrectChoice != 2 {
		t.Errorf("CorrectChoice = %v, want 2", st.CorrectChoice)
	}
}

func TestSingleQuestionBoundary(t *testing.T) {
	s := newTestSession(t, 0)

	if _, ok := s.Result(); ok {
		t.Error("Result() available before finish")
	}
	if _, err := s.SelectAnswer(0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	st, err := s.Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !st.Finished() || st.Score != 1 || st.Total != 1 {
		t.Errorf("state = %+v, want finished 1/1", st)
	}
	res, _ := s.Result()
	if res.Percent != 100 {
		t.Errorf("percent = %v, want 100", res.Percent)
	}
}
