package quiz

import (
	"context"
)

// Repository defines the storage contract for quiz answers and questions.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// CreateAnswer appends a new answer submission. Earlier retries for the
	// same question are never mutated.
	CreateAnswer(ctx context.Context, answer *QuizAnswer) error

	// GetAnswers returns the full answer history for a user and daily read.
	GetAnswers(ctx context.Context, userID, dailyReadID string) ([]*QuizAnswer, error)

	// GetMaxRetrySeq returns the highest retry sequence the user has
	// submitted for a question, or 0 if none.
	GetMaxRetrySeq(ctx context.Context, userID, dailyReadID string, questionSeq int) (int, error)

	// GetQuestions returns the questions for a daily read in question order.
	GetQuestions(ctx context.Context, dailyReadID string) ([]*QuizQuestion, error)

	// CreateQuestions inserts the question set for a daily read.
	CreateQuestions(ctx context.Context, questions []*QuizQuestion) error
}
