package streak

import (
	"context"
	"time"
)

// Repository defines the storage contract for streak logs.
// The (user_id, streak_date) uniqueness must be a first-class storage
// constraint, not just an application-level check, so concurrent writers
// fail at commit time instead of double-crediting a day.
type Repository interface {
	// Create inserts a new streak log.
	// Returns shared.ErrStreakLogExists if the (user, date) pair is taken.
	Create(ctx context.Context, log *StreakLog) error

	// ExistsForDate reports whether the user already has a log on the date.
	ExistsForDate(ctx context.Context, userID string, date time.Time) (bool, error)

	// GetDatesOnOrBefore returns the user's streak dates on or before the
	// given date, most recent first.
	GetDatesOnOrBefore(ctx context.Context, userID string, date time.Time) ([]time.Time, error)

	// GetDatesInRange returns the user's streak dates within [from, to],
	// ascending.
	GetDatesInRange(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error)

	// GetLogsForDates returns the user's streak logs on exactly the given
	// dates, ascending by date.
	GetLogsForDates(ctx context.Context, userID string, dates []time.Time) ([]*StreakLog, error)
}
