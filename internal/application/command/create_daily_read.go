package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE DAILY READ COMMAND
// Publishes new assigned material together with its quiz question set.
// ══════════════════════════════════════════════════════════════════════════════

// QuizQuestionInput is one question of the new daily read's quiz.
type QuizQuestionInput struct {
	Question      string
	CorrectAnswer string
}

// CreateDailyReadCommand contains the data to publish a daily read.
type CreateDailyReadCommand struct {
	// Title of the material.
	Title string

	// Content is the reading text.
	Content string

	// Category is a free-form category name; may be empty.
	Category string

	// MinimalCorrectAnswer is the quiz pass threshold.
	MinimalCorrectAnswer int

	// ReadDate is the calendar date this material is assigned to.
	ReadDate time.Time

	// Questions become the quiz, in order; question_seq is assigned 1..n.
	Questions []QuizQuestionInput
}

// Validate validates the command.
func (c CreateDailyReadCommand) Validate() error {
	if c.Title == "" {
		return errors.New("create_daily_read: title is required")
	}
	if c.ReadDate.IsZero() {
		return errors.New("create_daily_read: read_date is required")
	}
	if c.MinimalCorrectAnswer < 0 {
		return errors.New("create_daily_read: minimal_correct_answer cannot be negative")
	}
	if c.MinimalCorrectAnswer > len(c.Questions) {
		return errors.New("create_daily_read: pass threshold exceeds question count")
	}
	for i, q := range c.Questions {
		if q.Question == "" || q.CorrectAnswer == "" {
			return fmt.Errorf("create_daily_read: question %d is incomplete", i+1)
		}
	}
	return nil
}

// CreateDailyReadResult contains the result of publishing a daily read.
type CreateDailyReadResult struct {
	DailyReadID   string
	QuestionCount int
}

// CreateDailyReadHandler handles the CreateDailyReadCommand.
type CreateDailyReadHandler struct {
	uow    UnitOfWorkFactory
	logger *slog.Logger
}

// NewCreateDailyReadHandler creates a new CreateDailyReadHandler.
func NewCreateDailyReadHandler(uow UnitOfWorkFactory, logger *slog.Logger) *CreateDailyReadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateDailyReadHandler{
		uow:    uow,
		logger: logger.With("command", "create_daily_read"),
	}
}

// Handle executes the create daily read command. Content publishing is not
// per-user work, so no user lock is taken.
func (h *CreateDailyReadHandler) Handle(ctx context.Context, cmd CreateDailyReadCommand) (*CreateDailyReadResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var result CreateDailyReadResult

	err := h.uow.Execute(ctx, "", func(ctx context.Context, ws cascade.Workspace) error {
		dailyRead, err := reading.NewDailyRead(
			uuid.NewString(),
			cmd.Title,
			cmd.Content,
			cmd.Category,
			cmd.MinimalCorrectAnswer,
			cmd.ReadDate,
		)
		if err != nil {
			return err
		}

		if err := ws.Reading().CreateDailyRead(ctx, dailyRead); err != nil {
			return err
		}
		ws.Collect(dailyRead)

		questions := make([]*quiz.QuizQuestion, len(cmd.Questions))
		for i, q := range cmd.Questions {
			questions[i] = &quiz.QuizQuestion{
				DailyReadID:   dailyRead.ID,
				QuestionSeq:   i + 1,
				Question:      q.Question,
				CorrectAnswer: q.CorrectAnswer,
			}
		}
		if len(questions) > 0 {
			if err := ws.Quiz().CreateQuestions(ctx, questions); err != nil {
				return err
			}
		}

		result = CreateDailyReadResult{
			DailyReadID:   dailyRead.ID,
			QuestionCount: len(questions),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create_daily_read: %w", err)
	}

	h.logger.Info("daily read published",
		"daily_read_id", result.DailyReadID,
		"title", cmd.Title,
		"questions", result.QuestionCount,
	)

	return &result, nil
}
