package xp

import (
	"context"
)

// Repository defines the storage contract for the exp ledger and snapshot.
// The (user_id, event_seq) and (user_id, event_kind, ref_id) uniqueness must
// be first-class storage constraints so a racing second writer fails at
// commit time instead of corrupting the sequence or double-granting.
type Repository interface {
	// CreateEvent appends a ledger entry.
	// Returns shared.ErrExpEventExists when (user, kind, ref) is taken and
	// shared.ErrConstraintViolation when (user, seq) lost a race.
	CreateEvent(ctx context.Context, event *UserExpEvent) error

	// ExistsForRef reports whether a grant already exists for the source.
	ExistsForRef(ctx context.Context, userID string, kind EventKind, refID string) (bool, error)

	// GetMaxEventSeq returns the user's highest event sequence, or 0.
	GetMaxEventSeq(ctx context.Context, userID string) (int64, error)

	// SumLedger returns the sum of all exp amounts for the user.
	SumLedger(ctx context.Context, userID string) (int, error)

	// GetSnapshot returns the user's snapshot.
	// Returns shared.ErrSnapshotNotFound if the user has no snapshot yet.
	GetSnapshot(ctx context.Context, userID string) (*UserExpSnapshot, error)

	// CreateSnapshot inserts the user's first snapshot row.
	CreateSnapshot(ctx context.Context, snapshot *UserExpSnapshot) error

	// UpdateSnapshot updates the user's snapshot row in place.
	UpdateSnapshot(ctx context.Context, snapshot *UserExpSnapshot) error

	// GetLedgerUserIDs returns the IDs of all users with ledger entries.
	// Used by the reconciliation job.
	GetLedgerUserIDs(ctx context.Context) ([]string, error)
}
