// Package query contains read operations (CQRS - Queries). Queries run over
// pool-backed repositories; they take no locks and trigger no cascade.
package query

import (
	"context"
	"errors"
	"log/slog"

	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET QUIZ RESULT QUERY
// Aggregates a user's answer history for a daily read into per-question
// correctness and overall pass status. Always recomputed from the answer
// rows; there is no stored result to go stale.
// ══════════════════════════════════════════════════════════════════════════════

// GetQuizResultQuery contains the parameters for a quiz result lookup.
type GetQuizResultQuery struct {
	// UserID is the user whose answers are aggregated.
	UserID string

	// DailyReadID is the daily read whose quiz is inspected.
	DailyReadID string
}

// Validate validates the query.
func (q GetQuizResultQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_quiz_result: user_id is required")
	}
	if q.DailyReadID == "" {
		return errors.New("get_quiz_result: daily_read_id is required")
	}
	return nil
}

// QuestionResultDTO is the outcome for one question.
type QuestionResultDTO struct {
	QuestionSeq int    `json:"question_seq"`
	Question    string `json:"question"`
	UserAnswer  string `json:"user_answer"`
	IsCorrect   bool   `json:"is_correct"`
}

// QuizResultDTO is the aggregated quiz outcome.
type QuizResultDTO struct {
	DailyReadID    string              `json:"daily_read_id"`
	UserID         string              `json:"user_id"`
	TotalQuestions int                 `json:"total_questions"`
	CorrectCount   int                 `json:"correct_count"`
	PassThreshold  int                 `json:"pass_threshold"`
	Passed         bool                `json:"passed"`
	Questions      []QuestionResultDTO `json:"questions"`
}

// GetQuizResultHandler handles the GetQuizResultQuery.
type GetQuizResultHandler struct {
	quizRepo    quiz.Repository
	readingRepo reading.Repository
	logger      *slog.Logger
}

// NewGetQuizResultHandler creates a new GetQuizResultHandler.
func NewGetQuizResultHandler(quizRepo quiz.Repository, readingRepo reading.Repository, logger *slog.Logger) *GetQuizResultHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetQuizResultHandler{
		quizRepo:    quizRepo,
		readingRepo: readingRepo,
		logger:      logger.With("query", "get_quiz_result"),
	}
}

// Handle executes the get quiz result query.
// Returns shared.ErrQuizNotFound when the daily read has no questions.
func (h *GetQuizResultHandler) Handle(ctx context.Context, q GetQuizResultQuery) (*QuizResultDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	dailyRead, err := h.readingRepo.GetDailyRead(ctx, q.DailyReadID)
	if err != nil {
		return nil, err
	}

	questions, err := h.quizRepo.GetQuestions(ctx, q.DailyReadID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, shared.ErrQuizNotFound
	}

	answers, err := h.quizRepo.GetAnswers(ctx, q.UserID, q.DailyReadID)
	if err != nil {
		return nil, err
	}

	result := quiz.Aggregate(questions, answers)

	dto := &QuizResultDTO{
		DailyReadID:    q.DailyReadID,
		UserID:         q.UserID,
		TotalQuestions: result.TotalQuestions,
		CorrectCount:   result.CorrectCount,
		PassThreshold:  dailyRead.MinimalCorrectAnswer,
		Passed:         result.Passed(dailyRead.MinimalCorrectAnswer),
		Questions:      make([]QuestionResultDTO, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		dto.Questions = append(dto.Questions, QuestionResultDTO{
			QuestionSeq: r.QuestionSeq,
			Question:    r.Question,
			UserAnswer:  r.UserAnswer,
			IsCorrect:   r.IsCorrect,
		})
	}

	return dto, nil
}
