package quiz

import "github.com/pavelanni/quiz/internal/model"

// Phase is the session-level state.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

// Outcome reports the effect of a locked-in answer.
type Outcome struct {
	Correct       bool `json:"correct"`
	CorrectChoice int  `json:"correct_choice"`
	ScoreAfter    int  `json:"score_after"`
}

// State is a snapshot of the session for rendering. Question is nil when the
// phase is finished; Selected, LastCorrect and CorrectChoice are only
// meaningful while the current question is locked.
type State struct {
	Phase         Phase           `json:"phase"`
	Question      *model.Question `json:"question,omitempty"`
	Index         int             `json:"index"`
	Selected      *int            `json:"selected,omitempty"`
	LastCorrect   bool            `json:"last_correct"`
	CorrectChoice *int            `json:"correct_choice,omitempty"`
	Score         int             `json:"score"`
	Total         int             `json:"total"`
	Progress      float64         `json:"progress"`
}

// Finished reports whether the snapshot is the finished state.
func (s State) Finished() bool {
	return s.Phase == PhaseFinished
}

// Locked reports whether the current question has an answer locked in.
func (s State) Locked() bool {
	return s.Selected != nil
}

// Result summarizes a finished session.
type Result struct {
	Score   int     `json:"score"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Fraction returns score/total in [0, 1].
func (r Result) Fraction() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}
