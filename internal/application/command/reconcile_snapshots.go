package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILE SNAPSHOTS COMMAND
// Verifies every user's exp snapshot against the ledger sum and repairs the
// ones that diverged. Divergence cannot happen through the normal cascade -
// snapshot and ledger commit together - so a mismatch means out-of-band
// writes and is always logged as an invariant violation before repair.
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileSnapshotsCommand triggers a reconciliation pass.
type ReconcileSnapshotsCommand struct {
	// Repair controls whether diverged snapshots are rewritten. When false
	// the pass only reports.
	Repair bool
}

// ReconcileSnapshotsResult summarizes a reconciliation pass.
type ReconcileSnapshotsResult struct {
	UsersChecked int
	Diverged     int
	Repaired     int
}

// ReconcileSnapshotsHandler handles the ReconcileSnapshotsCommand.
type ReconcileSnapshotsHandler struct {
	uow    UnitOfWorkFactory
	xpRepo xp.Repository
	logger *slog.Logger
}

// NewReconcileSnapshotsHandler creates a new ReconcileSnapshotsHandler.
// xpRepo is a pool-backed repository used for the read-only scan; repairs
// run in per-user units of work.
func NewReconcileSnapshotsHandler(uow UnitOfWorkFactory, xpRepo xp.Repository, logger *slog.Logger) *ReconcileSnapshotsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileSnapshotsHandler{
		uow:    uow,
		xpRepo: xpRepo,
		logger: logger.With("command", "reconcile_snapshots"),
	}
}

// Handle executes the reconcile snapshots command.
func (h *ReconcileSnapshotsHandler) Handle(ctx context.Context, cmd ReconcileSnapshotsCommand) (*ReconcileSnapshotsResult, error) {
	userIDs, err := h.xpRepo.GetLedgerUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile_snapshots: %w", err)
	}

	result := &ReconcileSnapshotsResult{}

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.UsersChecked++

		diverged, repaired, err := h.reconcileUser(ctx, userID, cmd.Repair)
		if err != nil {
			return result, fmt.Errorf("reconcile_snapshots: user %s: %w", userID, err)
		}
		if diverged {
			result.Diverged++
		}
		if repaired {
			result.Repaired++
		}
	}

	h.logger.Info("snapshot reconciliation finished",
		"users_checked", result.UsersChecked,
		"diverged", result.Diverged,
		"repaired", result.Repaired,
	)

	return result, nil
}

// reconcileUser checks one user inside their own unit of work, so the ledger
// sum and the snapshot read cannot be torn by a concurrent grant.
func (h *ReconcileSnapshotsHandler) reconcileUser(ctx context.Context, userID string, repair bool) (diverged, repaired bool, err error) {
	err = h.uow.Execute(ctx, userID, func(ctx context.Context, ws cascade.Workspace) error {
		sum, err := ws.XP().SumLedger(ctx, userID)
		if err != nil {
			return err
		}

		maxSeq, err := ws.XP().GetMaxEventSeq(ctx, userID)
		if err != nil {
			return err
		}

		snapshot, err := ws.XP().GetSnapshot(ctx, userID)
		if err != nil {
			if !shared.IsNotFound(err) {
				return err
			}
			snapshot = nil
		}

		if snapshot != nil && snapshot.TotalExp == sum && snapshot.LastSeq == maxSeq {
			return nil
		}

		diverged = true
		h.logger.Error("exp snapshot diverged from ledger",
			"user_id", userID,
			"ledger_sum", sum,
			"ledger_max_seq", maxSeq,
			"snapshot_missing", snapshot == nil,
			"error", shared.ErrSnapshotDiverged,
		)

		if !repair {
			return nil
		}

		if snapshot == nil {
			rebuilt := &xp.UserExpSnapshot{
				UserID:      userID,
				SnapshotSeq: 1,
				LastSeq:     maxSeq,
				TotalExp:    sum,
				UpdatedAt:   time.Now().UTC(),
			}
			if err := ws.XP().CreateSnapshot(ctx, rebuilt); err != nil {
				return err
			}
		} else {
			snapshot.SnapshotSeq++
			snapshot.LastSeq = maxSeq
			snapshot.TotalExp = sum
			snapshot.UpdatedAt = time.Now().UTC()
			if err := ws.XP().UpdateSnapshot(ctx, snapshot); err != nil {
				return err
			}
		}

		repaired = true
		return nil
	})
	return diverged, repaired, err
}
