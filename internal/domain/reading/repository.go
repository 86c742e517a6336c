package reading

import (
	"context"
)

// Repository defines the storage contract for the reading domain.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// CreateDailyRead inserts a new daily read.
	CreateDailyRead(ctx context.Context, d *DailyRead) error

	// GetDailyRead returns a daily read by ID.
	// Returns shared.ErrDailyReadNotFound if it does not exist.
	GetDailyRead(ctx context.Context, id string) (*DailyRead, error)

	// CreateReport inserts a new reading report.
	CreateReport(ctx context.Context, r *ReadingReport) error

	// GetReport returns a reading report by ID.
	GetReport(ctx context.Context, id string) (*ReadingReport, error)

	// CategoryExists reports whether a category with the given name exists,
	// matched case-insensitively.
	CategoryExists(ctx context.Context, name string) (bool, error)

	// CreateCategory inserts a new reading category.
	CreateCategory(ctx context.Context, c *ReadingCategory) error
}
