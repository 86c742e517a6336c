package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

// ═══════════════════════════════════════════════════════════════════════════
// STREAK BONUS EXP
//
// Completing an unbroken run of streak days grants a one-time bonus. The
// grant is keyed to the EARLIEST log of the window, so overlapping windows
// (day 7 and day 8 both close a 7-day run) share a ref only when they share
// a starting day - day 8's window starts on day 2 and grants again, which is
// the intended rolling-bonus behavior of the product.
// ═══════════════════════════════════════════════════════════════════════════

// StreakExpHandler grants the streak bonus on StreakLogCreated when the new
// log completes a full consecutive window.
type StreakExpHandler struct {
	rewards xp.Rewards
	logger  *slog.Logger
}

// NewStreakExpHandler creates the handler.
func NewStreakExpHandler(rewards xp.Rewards, logger *slog.Logger) *StreakExpHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreakExpHandler{
		rewards: rewards,
		logger:  logger.With("handler", "streak_exp"),
	}
}

// Name implements cascade.Handler.
func (h *StreakExpHandler) Name() string { return "streak_exp" }

// Handle implements cascade.Handler.
func (h *StreakExpHandler) Handle(ctx context.Context, ws cascade.Workspace, event shared.Event) error {
	created, ok := event.(streak.StreakLogCreatedEvent)
	if !ok {
		h.logger.Warn("received non-StreakLogCreatedEvent", "event_type", event.EventType())
		return nil
	}

	log := created.StreakLog
	window := streak.Window(log.StreakDate, h.rewards.StreakBonusDays)

	logs, err := ws.Streaks().GetLogsForDates(ctx, log.UserID, window)
	if err != nil {
		return err
	}

	dates := make([]time.Time, len(logs))
	for i, l := range logs {
		dates[i] = l.StreakDate
	}
	if !streak.IsConsecutiveRun(dates, h.rewards.StreakBonusDays) {
		return nil
	}

	// GetLogsForDates returns ascending by date, so logs[0] is the start of
	// the run. Its ID anchors the idempotence key for this window.
	earliest := logs[0]

	granted, err := grantExp(ctx, ws, log.UserID, h.rewards.StreakBonus, xp.KindStreakExp, earliest.ID)
	if err != nil {
		return err
	}

	if granted {
		h.logger.Info("streak bonus granted",
			"user_id", log.UserID,
			"window_start", earliest.StreakDate.Format("2006-01-02"),
			"window_end", log.StreakDate.Format("2006-01-02"),
			"amount", h.rewards.StreakBonus,
		)
	}

	return nil
}
