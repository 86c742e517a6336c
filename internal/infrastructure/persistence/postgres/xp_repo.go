package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// XP REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// XPRepository implements xp.Repository for PostgreSQL.
type XPRepository struct {
	q Querier
}

// NewXPRepository creates a new XPRepository.
func NewXPRepository(q Querier) *XPRepository {
	return &XPRepository{q: q}
}

// CreateEvent appends a ledger entry. The two unique constraints report
// different failures: the (user, kind, ref) guard means the grant already
// happened (idempotent no-op for callers), while (user, seq) means this
// unit of work lost a sequencing race and should be retried whole.
func (r *XPRepository) CreateEvent(ctx context.Context, e *xp.UserExpEvent) error {
	query := `
		INSERT INTO user_exp_events (id, user_id, event_seq, exp_amount, event_kind, ref_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		e.ID,
		e.UserID,
		e.EventSeq,
		e.ExpAmount,
		string(e.EventKind),
		e.RefID,
		e.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			if isRefConstraint(err) {
				return shared.ErrExpEventExists
			}
			return shared.NewDomainError("xp", "CreateEvent", shared.ErrConstraintViolation, "event sequence already taken")
		}
		return fmt.Errorf("failed to create exp event: %w", err)
	}

	return nil
}

// isRefConstraint distinguishes the (user, kind, ref) guard from the
// (user, seq) sequence constraint by the violated constraint's name.
func isRefConstraint(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.Contains(pgErr.ConstraintName, "ref_id")
	}
	return false
}

// ExistsForRef reports whether a grant already exists for the source.
func (r *XPRepository) ExistsForRef(ctx context.Context, userID string, kind xp.EventKind, refID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_exp_events
			WHERE user_id = $1 AND event_kind = $2 AND ref_id = $3
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, userID, string(kind), refID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check exp event existence: %w", err)
	}

	return exists, nil
}

// GetMaxEventSeq returns the user's highest event sequence, or 0.
func (r *XPRepository) GetMaxEventSeq(ctx context.Context, userID string) (int64, error) {
	query := `
		SELECT COALESCE(MAX(event_seq), 0)
		FROM user_exp_events
		WHERE user_id = $1
	`

	var max int64
	if err := r.q.QueryRow(ctx, query, userID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to query max event seq: %w", err)
	}

	return max, nil
}

// SumLedger returns the sum of all exp amounts for the user.
func (r *XPRepository) SumLedger(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(exp_amount), 0)
		FROM user_exp_events
		WHERE user_id = $1
	`

	var sum int
	if err := r.q.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum exp ledger: %w", err)
	}

	return sum, nil
}

// GetSnapshot returns the user's snapshot.
func (r *XPRepository) GetSnapshot(ctx context.Context, userID string) (*xp.UserExpSnapshot, error) {
	query := `
		SELECT user_id, snapshot_seq, last_seq, total_exp, updated_at
		FROM user_exp_snapshots
		WHERE user_id = $1
	`

	var s xp.UserExpSnapshot
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.SnapshotSeq, &s.LastSeq, &s.TotalExp, &s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get exp snapshot: %w", err)
	}

	return &s, nil
}

// CreateSnapshot inserts the user's first snapshot row.
func (r *XPRepository) CreateSnapshot(ctx context.Context, s *xp.UserExpSnapshot) error {
	query := `
		INSERT INTO user_exp_snapshots (user_id, snapshot_seq, last_seq, total_exp, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.Exec(ctx, query, s.UserID, s.SnapshotSeq, s.LastSeq, s.TotalExp, s.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("xp", "CreateSnapshot", shared.ErrConstraintViolation, "snapshot row already exists")
		}
		return fmt.Errorf("failed to create exp snapshot: %w", err)
	}

	return nil
}

// UpdateSnapshot updates the user's snapshot row in place.
func (r *XPRepository) UpdateSnapshot(ctx context.Context, s *xp.UserExpSnapshot) error {
	query := `
		UPDATE user_exp_snapshots
		SET snapshot_seq = $1, last_seq = $2, total_exp = $3, updated_at = $4
		WHERE user_id = $5
	`

	result, err := r.q.Exec(ctx, query, s.SnapshotSeq, s.LastSeq, s.TotalExp, s.UpdatedAt, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to update exp snapshot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrSnapshotNotFound
	}

	return nil
}

// GetLedgerUserIDs returns the IDs of all users with ledger entries.
func (r *XPRepository) GetLedgerUserIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM user_exp_events`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
