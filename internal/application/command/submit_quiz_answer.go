// Package command contains write operations (CQRS - Commands). Every command
// runs inside one unit of work: the write, the event cascade it triggers,
// and the commit are atomic.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT QUIZ ANSWER COMMAND
// Appends one answer submission and runs the cascade it triggers: pass
// recomputation, streak credit, exp grants, snapshot update.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitQuizAnswerCommand contains the data to submit a quiz answer.
type SubmitQuizAnswerCommand struct {
	// UserID is the answering user.
	UserID string

	// DailyReadID is the daily read whose quiz is being answered.
	DailyReadID string

	// QuestionSeq is the 1-based question number within the quiz.
	QuestionSeq int

	// Answer is the submitted answer text.
	Answer string
}

// Validate validates the command.
func (c SubmitQuizAnswerCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("submit_quiz_answer: user_id is required")
	}
	if c.DailyReadID == "" {
		return errors.New("submit_quiz_answer: daily_read_id is required")
	}
	if c.QuestionSeq <= 0 {
		return errors.New("submit_quiz_answer: question_seq must be positive")
	}
	return nil
}

// SubmitQuizAnswerResult contains the result of a submission.
type SubmitQuizAnswerResult struct {
	// AnswerID is the ID of the stored submission.
	AnswerID string

	// RetrySeq is the retry sequence assigned to this submission.
	RetrySeq int

	// Result is the quiz aggregation after this submission.
	Result quiz.Result

	// Passed reports whether the quiz is passed after this submission.
	Passed bool
}

// SubmitQuizAnswerHandler handles the SubmitQuizAnswerCommand.
type SubmitQuizAnswerHandler struct {
	uow    UnitOfWorkFactory
	logger *slog.Logger
}

// NewSubmitQuizAnswerHandler creates a new SubmitQuizAnswerHandler.
func NewSubmitQuizAnswerHandler(uow UnitOfWorkFactory, logger *slog.Logger) *SubmitQuizAnswerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitQuizAnswerHandler{
		uow:    uow,
		logger: logger.With("command", "submit_quiz_answer"),
	}
}

// Handle executes the submit quiz answer command.
func (h *SubmitQuizAnswerHandler) Handle(ctx context.Context, cmd SubmitQuizAnswerCommand) (*SubmitQuizAnswerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var result SubmitQuizAnswerResult

	err := h.uow.Execute(ctx, cmd.UserID, func(ctx context.Context, ws cascade.Workspace) error {
		dailyRead, err := ws.Reading().GetDailyRead(ctx, cmd.DailyReadID)
		if err != nil {
			return err
		}

		questions, err := ws.Quiz().GetQuestions(ctx, cmd.DailyReadID)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return shared.ErrQuizNotFound
		}
		if cmd.QuestionSeq > len(questions) {
			return shared.ErrQuestionSeqInvalid
		}

		maxRetry, err := ws.Quiz().GetMaxRetrySeq(ctx, cmd.UserID, cmd.DailyReadID, cmd.QuestionSeq)
		if err != nil {
			return err
		}

		answer, err := quiz.NewQuizAnswer(uuid.NewString(), cmd.UserID, cmd.DailyReadID, cmd.QuestionSeq, maxRetry+1, cmd.Answer)
		if err != nil {
			return err
		}

		if err := ws.Quiz().CreateAnswer(ctx, answer); err != nil {
			return err
		}
		ws.Collect(answer)

		answers, err := ws.Quiz().GetAnswers(ctx, cmd.UserID, cmd.DailyReadID)
		if err != nil {
			return err
		}

		result = SubmitQuizAnswerResult{
			AnswerID: answer.ID,
			RetrySeq: answer.RetrySeq,
			Result:   quiz.Aggregate(questions, answers),
		}
		result.Passed = result.Result.Passed(dailyRead.MinimalCorrectAnswer)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit_quiz_answer: %w", err)
	}

	h.logger.Info("quiz answer submitted",
		"user_id", cmd.UserID,
		"daily_read_id", cmd.DailyReadID,
		"question_seq", cmd.QuestionSeq,
		"retry_seq", result.RetrySeq,
		"passed", result.Passed,
	)

	return &result, nil
}
