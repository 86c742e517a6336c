// Package xp contains the experience-point domain model: the append-only
// per-user ledger of exp grants and the running-total snapshot projection
// derived from it.
package xp

import (
	"time"

	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// EventKind identifies what kind of activity granted the exp.
type EventKind string

const (
	// KindReadingExp is granted per reading report, scaled by page count.
	KindReadingExp EventKind = "ReadingExp"
	// KindDailyReadsExp is granted once per passed daily-read quiz.
	KindDailyReadsExp EventKind = "DailyReadsExp"
	// KindStreakExp is the bonus for an unbroken run of streak days.
	KindStreakExp EventKind = "StreakExp"
)

// IsValid checks that the kind is one of the known grant kinds.
func (k EventKind) IsValid() bool {
	switch k {
	case KindReadingExp, KindDailyReadsExp, KindStreakExp:
		return true
	default:
		return false
	}
}

// UserExpEvent is one entry in a user's exp ledger.
//
// Invariants:
//   - EventSeq is monotonic and gapless per user, starting at 1.
//   - At most one entry exists per (UserID, EventKind, RefID) - the
//     idempotence guard against duplicate grants from repeated events.
//
// Entries are append-only; they are never mutated or deleted.
type UserExpEvent struct {
	shared.AggregateRoot

	ID        string
	UserID    string
	EventSeq  int64
	ExpAmount int
	EventKind EventKind
	RefID     string
	CreatedAt time.Time
}

// NewUserExpEvent creates a ledger entry and raises UserExpCreated.
func NewUserExpEvent(id, userID string, eventSeq int64, amount int, kind EventKind, refID string) (*UserExpEvent, error) {
	if amount < 0 {
		return nil, shared.ErrInvalidExpAmount
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("xp", "Create", shared.ErrInvalidInput, "unknown exp event kind")
	}

	e := &UserExpEvent{
		ID:        id,
		UserID:    userID,
		EventSeq:  eventSeq,
		ExpAmount: amount,
		EventKind: kind,
		RefID:     refID,
		CreatedAt: time.Now().UTC(),
	}

	e.Raise(NewUserExpCreatedEvent(e))
	return e, nil
}

// UserExpSnapshot is the materialized running total of a user's ledger.
// Exactly one row per user. It is a pure derivation: it must always equal
// the sum of the user's ledger entries, and is reconstructible from them.
type UserExpSnapshot struct {
	UserID      string
	SnapshotSeq int64
	LastSeq     int64
	TotalExp    int
	UpdatedAt   time.Time
}

// NewSnapshot creates the first snapshot for a user from their first
// ledger entry.
func NewSnapshot(event *UserExpEvent) *UserExpSnapshot {
	return &UserExpSnapshot{
		UserID:      event.UserID,
		SnapshotSeq: 1,
		LastSeq:     event.EventSeq,
		TotalExp:    event.ExpAmount,
		UpdatedAt:   time.Now().UTC(),
	}
}

// Apply folds a new ledger entry into the snapshot in place.
func (s *UserExpSnapshot) Apply(event *UserExpEvent) {
	s.SnapshotSeq++
	s.LastSeq = event.EventSeq
	s.TotalExp += event.ExpAmount
	s.UpdatedAt = time.Now().UTC()
}

// Rewards holds the business-rule exp amounts. Fixed constants in the
// product, surfaced as configuration so environments can tune them.
type Rewards struct {
	// ReadingPerPage is the exp granted per page of a reading report.
	ReadingPerPage int

	// QuizPassReward is the exp granted once per passed daily-read quiz.
	QuizPassReward int

	// StreakBonus is the exp granted for an unbroken streak window.
	StreakBonus int

	// StreakBonusDays is the length of the streak window.
	StreakBonusDays int
}

// DefaultRewards returns the product's standard reward amounts.
func DefaultRewards() Rewards {
	return Rewards{
		ReadingPerPage:  10,
		QuizPassReward:  50,
		StreakBonus:     200,
		StreakBonusDays: 7,
	}
}
