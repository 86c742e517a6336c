package eventhandler

import (
	"context"
	"log/slog"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

// ═══════════════════════════════════════════════════════════════════════════
// DAILY READS EXP
//
// A passed daily-read quiz grants a fixed reward, once per (user, daily
// read). Passing again after more retries - or passing, failing a retry,
// then "passing" again - never revokes or re-grants.
// ═══════════════════════════════════════════════════════════════════════════

// DailyReadsExpHandler grants the quiz-pass reward on QuizAnswered.
type DailyReadsExpHandler struct {
	rewards xp.Rewards
	logger  *slog.Logger
}

// NewDailyReadsExpHandler creates the handler.
func NewDailyReadsExpHandler(rewards xp.Rewards, logger *slog.Logger) *DailyReadsExpHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyReadsExpHandler{
		rewards: rewards,
		logger:  logger.With("handler", "daily_reads_exp"),
	}
}

// Name implements cascade.Handler.
func (h *DailyReadsExpHandler) Name() string { return "daily_reads_exp" }

// Handle implements cascade.Handler.
func (h *DailyReadsExpHandler) Handle(ctx context.Context, ws cascade.Workspace, event shared.Event) error {
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

	granted, err := grantExp(ctx, ws, answer.UserID, h.rewards.QuizPassReward, xp.KindDailyReadsExp, answer.DailyReadID)
	if err != nil {
		return err
	}

	if granted {
		h.logger.Info("quiz pass exp granted",
			"user_id", answer.UserID,
			"daily_read_id", answer.DailyReadID,
			"amount", h.rewards.QuizPassReward,
		)
	}

	return nil
}
