package eventhandler

import (
	"context"
	"log/slog"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

// ═══════════════════════════════════════════════════════════════════════════
// READING EXP
//
// Every reading report grants exp proportional to its current page count.
// Report IDs are unique and reports are never recreated, so the generic
// (user, kind, ref) guard is the only duplicate protection needed.
// ═══════════════════════════════════════════════════════════════════════════

// ReadingExpHandler grants page-scaled exp on ReadingReportCreated.
type ReadingExpHandler struct {
	rewards xp.Rewards
	logger  *slog.Logger
}

// NewReadingExpHandler creates the handler.
func NewReadingExpHandler(rewards xp.Rewards, logger *slog.Logger) *ReadingExpHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadingExpHandler{
		rewards: rewards,
		logger:  logger.With("handler", "reading_exp"),
	}
}

// Name implements cascade.Handler.
func (h *ReadingExpHandler) Name() string { return "reading_exp" }

// Handle implements cascade.Handler.
func (h *ReadingExpHandler) Handle(ctx context.Context, ws cascade.Workspace, event shared.Event) error {
	created, ok := event.(reading.ReadingReportCreatedEvent)
	if !ok {
		h.logger.Warn("received non-ReadingReportCreatedEvent", "event_type", event.EventType())
		return nil
	}

	report := created.Report
	amount := report.CurrentPage * h.rewards.ReadingPerPage

	granted, err := grantExp(ctx, ws, report.UserID, amount, xp.KindReadingExp, report.ID)
	if err != nil {
		return err
	}

	if granted {
		h.logger.Info("reading exp granted",
			"user_id", report.UserID,
			"report_id", report.ID,
			"pages", report.CurrentPage,
			"amount", amount,
		)
	}

	return nil
}
