package postgres

import (
	"context"
	"fmt"

	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// READING REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ReadingRepository implements reading.Repository for PostgreSQL.
type ReadingRepository struct {
	q Querier
}

// NewReadingRepository creates a new ReadingRepository.
func NewReadingRepository(q Querier) *ReadingRepository {
	return &ReadingRepository{q: q}
}

// CreateDailyRead inserts a new daily read.
func (r *ReadingRepository) CreateDailyRead(ctx context.Context, d *reading.DailyRead) error {
	query := `
		INSERT INTO daily_reads (id, title, content, category, minimal_correct_answer, read_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		d.ID,
		d.Title,
		d.Content,
		d.Category,
		d.MinimalCorrectAnswer,
		d.ReadDate,
		d.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("reading", "CreateDailyRead", shared.ErrAlreadyExists, "daily read already exists")
		}
		return fmt.Errorf("failed to create daily read: %w", err)
	}

	return nil
}

// GetDailyRead returns a daily read by ID.
func (r *ReadingRepository) GetDailyRead(ctx context.Context, id string) (*reading.DailyRead, error) {
	query := `
		SELECT id, title, content, category, minimal_correct_answer, read_date, created_at
		FROM daily_reads
		WHERE id = $1
	`

	var d reading.DailyRead
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Title, &d.Content, &d.Category, &d.MinimalCorrectAnswer, &d.ReadDate, &d.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrDailyReadNotFound
		}
		return nil, fmt.Errorf("failed to get daily read: %w", err)
	}

	return &d, nil
}

// CreateReport inserts a new reading report.
func (r *ReadingRepository) CreateReport(ctx context.Context, report *reading.ReadingReport) error {
	query := `
		INSERT INTO reading_reports (id, user_id, resource_id, current_page, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.Exec(ctx, query,
		report.ID,
		report.UserID,
		report.ResourceID,
		report.CurrentPage,
		report.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("reading", "CreateReport", shared.ErrAlreadyExists, "reading report already exists")
		}
		return fmt.Errorf("failed to create reading report: %w", err)
	}

	return nil
}

// GetReport returns a reading report by ID.
func (r *ReadingRepository) GetReport(ctx context.Context, id string) (*reading.ReadingReport, error) {
	query := `
		SELECT id, user_id, resource_id, current_page, created_at
		FROM reading_reports
		WHERE id = $1
	`

	var report reading.ReadingReport
	err := r.q.QueryRow(ctx, query, id).Scan(
		&report.ID, &report.UserID, &report.ResourceID, &report.CurrentPage, &report.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get reading report: %w", err)
	}

	return &report, nil
}

// CategoryExists reports whether a category name exists, ignoring case.
func (r *ReadingRepository) CategoryExists(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reading_categories WHERE LOWER(category_name) = LOWER($1)
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check category existence: %w", err)
	}

	return exists, nil
}

// CreateCategory inserts a new reading category.
func (r *ReadingRepository) CreateCategory(ctx context.Context, c *reading.ReadingCategory) error {
	query := `
		INSERT INTO reading_categories (id, category_name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.q.Exec(ctx, query, c.ID, c.CategoryName, c.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("reading", "CreateCategory", shared.ErrAlreadyExists, "category already exists")
		}
		return fmt.Errorf("failed to create reading category: %w", err)
	}

	return nil
}
