package quiz

import "errors"

var (
	// ErrNoQuestions is returned when a session is created with an empty question set.
	ErrNoQuestions = errors.New("quiz has no questions")

	// ErrInvalidSelection is returned by SelectAnswer when the current question is
	// already locked, the session is finished, or the choice is out of range.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrAlreadyAnswered is wrapped by ErrInvalidSelection for a locked question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrChoiceOutOfRange is wrapped by ErrInvalidSelection for a bad choice index.
	ErrChoiceOutOfRange = errors.New("choice out of range")
	// ErrFinished is wrapped by ErrInvalidSelection when no question is left.
	ErrFinished = errors.New("quiz finished")

	// ErrPrematureAdvance is returned by Advance before an answer is locked in.
	ErrPrematureAdvance = errors.New("no answer selected")

	// ErrOutOfRange is returned by CurrentQuestion in the finished state.
	ErrOutOfRange = errors.New("no current question")
)
