// Package reading contains the reading domain model: daily reads (the
// assigned material with its quiz pass threshold), user reading reports,
// and reading categories.
package reading

import (
	"strings"
	"time"

	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// DailyRead is an assigned reading unit. Its quiz questions live in the quiz
// domain; MinimalCorrectAnswer is the pass threshold for that quiz.
type DailyRead struct {
	shared.AggregateRoot

	ID                   string
	Title                string
	Content              string
	Category             string
	MinimalCorrectAnswer int
	ReadDate             time.Time
	CreatedAt            time.Time
}

// NewDailyRead creates a new daily read and raises DailyReadCreated.
func NewDailyRead(id, title, content, category string, minimalCorrect int, readDate time.Time) (*DailyRead, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("reading", "Create", shared.ErrEmptyValue, "title cannot be empty")
	}
	if minimalCorrect < 0 {
		return nil, shared.NewDomainError("reading", "Create", shared.ErrNegativeValue, "minimal correct answers cannot be negative")
	}

	d := &DailyRead{
		ID:                   id,
		Title:                title,
		Content:              content,
		Category:             category,
		MinimalCorrectAnswer: minimalCorrect,
		ReadDate:             readDate,
		CreatedAt:            time.Now().UTC(),
	}

	d.Raise(NewDailyReadCreatedEvent(d))
	return d, nil
}

// ReadingReport is a user's reading progress report for a resource.
// It is the triggering source for ReadingExp grants.
type ReadingReport struct {
	shared.AggregateRoot

	ID          string
	UserID      string
	ResourceID  string
	CurrentPage int
	CreatedAt   time.Time
}

// NewReadingReport creates a new reading report and raises ReadingReportCreated.
func NewReadingReport(id, userID, resourceID string, currentPage int) (*ReadingReport, error) {
	if currentPage < 0 {
		return nil, shared.ErrInvalidPageCount
	}

	r := &ReadingReport{
		ID:          id,
		UserID:      userID,
		ResourceID:  resourceID,
		CurrentPage: currentPage,
		CreatedAt:   time.Now().UTC(),
	}

	r.Raise(NewReadingReportCreatedEvent(r))
	return r, nil
}

// ReadingCategory is a distinct category name collected from daily reads.
// Names are unique case-insensitively.
type ReadingCategory struct {
	ID           string
	CategoryName string
	CreatedAt    time.Time
}

// NewReadingCategory creates a category with a trimmed name.
func NewReadingCategory(id, name string) (*ReadingCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrCategoryEmpty
	}

	return &ReadingCategory{
		ID:           id,
		CategoryName: name,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
