// Package views renders the quiz pages. Components live in .templ files.
package views

//go:generate templ generate

import (
	"context"
	"fmt"
	"math"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/quiz/internal/i18n"
	"github.com/pavelanni/quiz/internal/model"
	"github.com/pavelanni/quiz/internal/quiz"
)

// PageData is everything the quiz page needs to render one session state.
type PageData struct {
	Title       string
	State       quiz.State
	Explanation string
	Result      *quiz.Result
}

func pageTitle(ctx context.Context, title string) string {
	if title == "" {
		return appI18n.T(ctx, "AppTitle")
	}
	return title
}

// pageBody picks the results view once the session is finished and the
// question view otherwise.
func pageBody(d PageData) templ.Component {
	if d.State.Finished() || d.State.Question == nil {
		if d.Result != nil {
			return ResultView(*d.Result)
		}
		res := quiz.Result{Score: d.State.Score, Total: d.State.Total}
		if res.Total > 0 {
			res.Percent = 100 * float64(res.Score) / float64(res.Total)
		}
		return ResultView(res)
	}
	return QuestionView(*d.State.Question, d)
}

func basePath(ctx context.Context, p string) string {
	return model.BasePathFromContext(ctx) + p
}

// choiceResult marks the selected choice as "correct" or "wrong".
func choiceResult(st quiz.State, i int) string {
	if st.Selected == nil || *st.Selected != i {
		return ""
	}
	if st.CorrectChoice != nil && *st.CorrectChoice == i {
		return "correct"
	}
	return "wrong"
}

func feedbackKeys(st quiz.State) (title, message string) {
	if st.LastCorrect {
		return "Correct", "CorrectMessage"
	}
	return "Wrong", "WrongMessage"
}

func correctAnswer(ctx context.Context, q model.Question, st quiz.State) string {
	if st.CorrectChoice == nil {
		return ""
	}
	return appI18n.Td(ctx, "CorrectAnswerIs", map[string]any{"Answer": q.Choices[*st.CorrectChoice]})
}

// ringRadius matches the r attribute of the ring circles in quiz.templ.
const ringRadius = 90

func ringDash(res quiz.Result) string {
	circumference := 2 * math.Pi * ringRadius
	return fmt.Sprintf("%.2f %.2f", circumference*res.Fraction(), circumference)
}

func percentLabel(res quiz.Result) string {
	return fmt.Sprintf("%.0f%%", res.Percent)
}
