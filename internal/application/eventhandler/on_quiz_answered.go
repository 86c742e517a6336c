// Package eventhandler contains the cascade handlers that derive streak and
// experience state from quiz and reading activity. Every handler runs inside
// the unit of work that raised the event; a handler error rolls the whole
// unit of work back.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
	"github.com/readhabit/readhabit-hub/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// STREAK FROM QUIZ ANSWER
//
// A passed daily-read quiz is the streak condition. This handler recomputes
// pass status from scratch on every QuizAnswered event (a retry can change
// which answer is current), then records at most one streak log for the
// user's current reading day.
// ═══════════════════════════════════════════════════════════════════════════

// StreakFromQuizHandler creates a streak log when a quiz answer completes a
// passing quiz for the day.
type StreakFromQuizHandler struct {
	clock  *timeutil.Clock
	logger *slog.Logger
}

// NewStreakFromQuizHandler creates the handler.
func NewStreakFromQuizHandler(clock *timeutil.Clock, logger *slog.Logger) *StreakFromQuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreakFromQuizHandler{
		clock:  clock,
		logger: logger.With("handler", "streak_from_quiz"),
	}
}

// Name implements cascade.Handler.
func (h *StreakFromQuizHandler) Name() string { return "streak_from_quiz" }

// Handle implements cascade.Handler.
func (h *StreakFromQuizHandler) Handle(ctx context.Context, ws cascade.Workspace, event shared.Event) error {
	answered, ok := event.(quiz.QuizAnsweredEvent)
	if !ok {
		h.logger.Warn("received non-QuizAnsweredEvent", "event_type", event.EventType())
		return nil
	}

	answer := answered.Answer

	passed, err := quizPassed(ctx, ws, answer.UserID, answer.DailyReadID)
	if err != nil {
		return err
	}
	if !passed {
		return nil
	}

	today := h.clock.Today()

	exists, err := ws.Streaks().ExistsForDate(ctx, answer.UserID, today)
	if err != nil {
		return err
	}
	if exists {
		// Already credited for today; re-triggering events are a no-op.
		return nil
	}

	log := streak.NewStreakLog(uuid.NewString(), answer.UserID, today)
	if err := ws.Streaks().Create(ctx, log); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil
		}
		return err
	}

	ws.Collect(log)

	h.logger.Info("streak logged",
		"user_id", answer.UserID,
		"streak_date", today.Format("2006-01-02"),
	)

	return nil
}

// quizPassed recomputes the quiz pass status for (user, daily read) from the
// stored answer history. Returns false without error when the daily read no
// longer exists.
func quizPassed(ctx context.Context, ws cascade.Workspace, userID, dailyReadID string) (bool, error) {
	dailyRead, err := ws.Reading().GetDailyRead(ctx, dailyReadID)
	if err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	questions, err := ws.Quiz().GetQuestions(ctx, dailyReadID)
	if err != nil {
		return false, err
	}

	answers, err := ws.Quiz().GetAnswers(ctx, userID, dailyReadID)
	if err != nil {
		return false, err
	}

	result := quiz.Aggregate(questions, answers)
	return result.Passed(dailyRead.MinimalCorrectAnswer), nil
}
