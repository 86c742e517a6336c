package eventhandler

import (
	"context"
	"log/slog"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

// ═══════════════════════════════════════════════════════════════════════════
// SNAPSHOT PROJECTION
//
// Folds each new ledger entry into the user's running-total snapshot, in the
// same unit of work as the ledger append. The snapshot therefore never lags
// the ledger; the reconciliation job exists only to repair out-of-band
// corruption.
// ═══════════════════════════════════════════════════════════════════════════

// SnapshotHandler maintains the exp snapshot on UserExpCreated.
type SnapshotHandler struct {
	logger *slog.Logger
}

// NewSnapshotHandler creates the handler.
func NewSnapshotHandler(logger *slog.Logger) *SnapshotHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotHandler{logger: logger.With("handler", "exp_snapshot")}
}

// Name implements cascade.Handler.
func (h *SnapshotHandler) Name() string { return "exp_snapshot" }

// Handle implements cascade.Handler.
func (h *SnapshotHandler) Handle(ctx context.Context, ws cascade.Workspace, event shared.Event) error {
	created, ok := event.(xp.UserExpCreatedEvent)
	if !ok {
		h.logger.Warn("received non-UserExpCreatedEvent", "event_type", event.EventType())
		return nil
	}

	entry := created.ExpEvent

	snapshot, err := ws.XP().GetSnapshot(ctx, entry.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return ws.XP().CreateSnapshot(ctx, xp.NewSnapshot(entry))
		}
		return err
	}

	snapshot.Apply(entry)
	return ws.XP().UpdateSnapshot(ctx, snapshot)
}
