package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StreakRepository implements streak.Repository for PostgreSQL.
//
// streak_date is a DATE column; scanned values come back as midnight UTC,
// matching the domain's date representation exactly.
type StreakRepository struct {
	q Querier
}

// NewStreakRepository creates a new StreakRepository.
func NewStreakRepository(q Querier) *StreakRepository {
	return &StreakRepository{q: q}
}

// Create inserts a new streak log.
func (r *StreakRepository) Create(ctx context.Context, log *streak.StreakLog) error {
	query := `
		INSERT INTO streak_logs (id, user_id, streak_date, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.Exec(ctx, query, log.ID, log.UserID, log.StreakDate, log.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStreakLogExists
		}
		return fmt.Errorf("failed to create streak log: %w", err)
	}

	return nil
}

// ExistsForDate reports whether the user already has a log on the date.
func (r *StreakRepository) ExistsForDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM streak_logs WHERE user_id = $1 AND streak_date = $2
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, userID, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check streak log existence: %w", err)
	}

	return exists, nil
}

// GetDatesOnOrBefore returns the user's streak dates on or before the given
// date, most recent first.
func (r *StreakRepository) GetDatesOnOrBefore(ctx context.Context, userID string, date time.Time) ([]time.Time, error) {
	query := `
		SELECT streak_date
		FROM streak_logs
		WHERE user_id = $1 AND streak_date <= $2
		ORDER BY streak_date DESC
	`

	return r.queryDates(ctx, query, userID, date)
}

// GetDatesInRange returns the user's streak dates within [from, to], ascending.
func (r *StreakRepository) GetDatesInRange(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT streak_date
		FROM streak_logs
		WHERE user_id = $1 AND streak_date BETWEEN $2 AND $3
		ORDER BY streak_date
	`

	return r.queryDates(ctx, query, userID, from, to)
}

// GetLogsForDates returns the user's streak logs on exactly the given dates,
// ascending by date.
func (r *StreakRepository) GetLogsForDates(ctx context.Context, userID string, dates []time.Time) ([]*streak.StreakLog, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, streak_date, created_at
		FROM streak_logs
		WHERE user_id = $1 AND streak_date = ANY($2)
		ORDER BY streak_date
	`

	rows, err := r.q.Query(ctx, query, userID, dates)
	if err != nil {
		return nil, fmt.Errorf("failed to query streak logs: %w", err)
	}
	defer rows.Close()

	var logs []*streak.StreakLog
	for rows.Next() {
		var log streak.StreakLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.StreakDate, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan streak log: %w", err)
		}
		log.StreakDate = log.StreakDate.UTC()
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

func (r *StreakRepository) queryDates(ctx context.Context, query string, args ...interface{}) ([]time.Time, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query streak dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan streak date: %w", err)
		}
		dates = append(dates, d.UTC())
	}

	return dates, rows.Err()
}
