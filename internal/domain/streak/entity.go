// Package streak contains the streak domain model: one log entry per user
// per reading day, plus the pure computations over those entries (current
// streak length, weekly view, consecutive-window detection).
//
// All dates in this package are calendar dates represented as time.Time
// values normalized to midnight UTC. The reading-day boundary (a fixed
// UTC+8 business-rule offset) is applied by pkg/timeutil before dates
// enter this package.
package streak

import (
	"time"

	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// StreakLog records that a user satisfied the streak condition on a date.
// Invariant: at most one StreakLog per (UserID, StreakDate). Created exactly
// once, never mutated or deleted.
type StreakLog struct {
	shared.AggregateRoot

	ID         string
	UserID     string
	StreakDate time.Time
	CreatedAt  time.Time
}

// NewStreakLog creates a new streak log for the given calendar date and
// raises StreakLogCreated.
func NewStreakLog(id, userID string, streakDate time.Time) *StreakLog {
	s := &StreakLog{
		ID:         id,
		UserID:     userID,
		StreakDate: normalize(streakDate),
		CreatedAt:  time.Now().UTC(),
	}

	s.Raise(NewStreakLogCreatedEvent(s))
	return s
}

// normalize truncates a timestamp to midnight UTC so date comparisons are
// exact Equal checks.
func normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
