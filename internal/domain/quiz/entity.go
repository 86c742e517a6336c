// Package quiz contains the quiz domain model: questions attached to a daily
// read, user answers with retry history, and the pass/fail aggregation over
// the latest answers. No external dependencies live here.
package quiz

import (
	"strings"
	"time"

	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// QuizQuestion is read-only reference data owned by content management.
type QuizQuestion struct {
	DailyReadID   string
	QuestionSeq   int
	Question      string
	CorrectAnswer string
}

// IsCorrect reports whether the given answer text matches the correct answer.
// Comparison is case-insensitive; whitespace is significant.
func (q *QuizQuestion) IsCorrect(answer string) bool {
	return strings.EqualFold(answer, q.CorrectAnswer)
}

// QuizAnswer is a single answer submission. Multiple rows may exist per
// (user, daily read, question); only the one with the highest RetrySeq is
// authoritative. Earlier retries are kept for history and never mutated.
type QuizAnswer struct {
	shared.AggregateRoot

	ID          string
	UserID      string
	DailyReadID string
	QuestionSeq int
	RetrySeq    int
	Answer      string
	CreatedAt   time.Time
}

// NewQuizAnswer creates a new answer submission with the given retry sequence.
func NewQuizAnswer(id, userID, dailyReadID string, questionSeq, retrySeq int, answer string) (*QuizAnswer, error) {
	if questionSeq <= 0 {
		return nil, shared.ErrQuestionSeqInvalid
	}
	if strings.TrimSpace(answer) == "" {
		return nil, shared.ErrAnswerEmpty
	}

	a := &QuizAnswer{
		ID:          id,
		UserID:      userID,
		DailyReadID: dailyReadID,
		QuestionSeq: questionSeq,
		RetrySeq:    retrySeq,
		Answer:      answer,
		CreatedAt:   time.Now().UTC(),
	}

	a.Raise(NewQuizAnsweredEvent(a))
	return a, nil
}
