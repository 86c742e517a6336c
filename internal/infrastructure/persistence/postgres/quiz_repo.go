package postgres

import (
	"context"
	"fmt"

	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// QuizRepository implements quiz.Repository for PostgreSQL. It runs over a
// Querier so the same implementation serves both pooled reads and
// unit-of-work transactions.
type QuizRepository struct {
	q Querier
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(q Querier) *QuizRepository {
	return &QuizRepository{q: q}
}

// CreateAnswer appends a new answer submission.
func (r *QuizRepository) CreateAnswer(ctx context.Context, a *quiz.QuizAnswer) error {
	query := `
		INSERT INTO quiz_answers (id, user_id, daily_read_id, question_seq, retry_seq, answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.DailyReadID,
		a.QuestionSeq,
		a.RetrySeq,
		a.Answer,
		a.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("quiz", "CreateAnswer", shared.ErrConstraintViolation, "retry sequence already taken")
		}
		return fmt.Errorf("failed to create quiz answer: %w", err)
	}

	return nil
}

// GetAnswers returns the full answer history for a user and daily read.
func (r *QuizRepository) GetAnswers(ctx context.Context, userID, dailyReadID string) ([]*quiz.QuizAnswer, error) {
	query := `
		SELECT id, user_id, daily_read_id, question_seq, retry_seq, answer, created_at
		FROM quiz_answers
		WHERE user_id = $1 AND daily_read_id = $2
		ORDER BY question_seq, retry_seq
	`

	rows, err := r.q.Query(ctx, query, userID, dailyReadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz answers: %w", err)
	}
	defer rows.Close()

	var answers []*quiz.QuizAnswer
	for rows.Next() {
		var a quiz.QuizAnswer
		if err := rows.Scan(&a.ID, &a.UserID, &a.DailyReadID, &a.QuestionSeq, &a.RetrySeq, &a.Answer, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz answer: %w", err)
		}
		answers = append(answers, &a)
	}

	return answers, rows.Err()
}

// GetMaxRetrySeq returns the highest retry sequence for a question, or 0.
func (r *QuizRepository) GetMaxRetrySeq(ctx context.Context, userID, dailyReadID string, questionSeq int) (int, error) {
	query := `
		SELECT COALESCE(MAX(retry_seq), 0)
		FROM quiz_answers
		WHERE user_id = $1 AND daily_read_id = $2 AND question_seq = $3
	`

	var max int
	if err := r.q.QueryRow(ctx, query, userID, dailyReadID, questionSeq).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to query max retry seq: %w", err)
	}

	return max, nil
}

// GetQuestions returns the questions for a daily read in question order.
func (r *QuizRepository) GetQuestions(ctx context.Context, dailyReadID string) ([]*quiz.QuizQuestion, error) {
	query := `
		SELECT daily_read_id, question_seq, question, correct_answer
		FROM quiz_questions
		WHERE daily_read_id = $1
		ORDER BY question_seq
	`

	rows, err := r.q.Query(ctx, query, dailyReadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer rows.Close()

	var questions []*quiz.QuizQuestion
	for rows.Next() {
		var q quiz.QuizQuestion
		if err := rows.Scan(&q.DailyReadID, &q.QuestionSeq, &q.Question, &q.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}
		questions = append(questions, &q)
	}

	return questions, rows.Err()
}

// CreateQuestions inserts the question set for a daily read.
func (r *QuizRepository) CreateQuestions(ctx context.Context, questions []*quiz.QuizQuestion) error {
	query := `
		INSERT INTO quiz_questions (daily_read_id, question_seq, question, correct_answer)
		VALUES ($1, $2, $3, $4)
	`

	for _, q := range questions {
		if _, err := r.q.Exec(ctx, query, q.DailyReadID, q.QuestionSeq, q.Question, q.CorrectAnswer); err != nil {
			if IsUniqueViolation(err) {
				return shared.NewDomainError("quiz", "CreateQuestions", shared.ErrAlreadyExists, "question sequence already taken")
			}
			return fmt.Errorf("failed to create quiz question %d: %w", q.QuestionSeq, err)
		}
	}

	return nil
}
