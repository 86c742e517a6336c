package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE READING REPORT COMMAND
// Records a user's reading progress; the cascade grants page-scaled exp.
// ══════════════════════════════════════════════════════════════════════════════

// CreateReadingReportCommand contains the data to record reading progress.
type CreateReadingReportCommand struct {
	// UserID is the reporting user.
	UserID string

	// ResourceID identifies what was read.
	ResourceID string

	// CurrentPage is how far the user has read. Zero is a valid report.
	CurrentPage int
}

// Validate validates the command.
func (c CreateReadingReportCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("create_reading_report: user_id is required")
	}
	if c.ResourceID == "" {
		return errors.New("create_reading_report: resource_id is required")
	}
	if c.CurrentPage < 0 {
		return errors.New("create_reading_report: current_page cannot be negative")
	}
	return nil
}

// CreateReadingReportResult contains the result of recording progress.
type CreateReadingReportResult struct {
	ReportID string
}

// CreateReadingReportHandler handles the CreateReadingReportCommand.
type CreateReadingReportHandler struct {
	uow    UnitOfWorkFactory
	logger *slog.Logger
}

// NewCreateReadingReportHandler creates a new CreateReadingReportHandler.
func NewCreateReadingReportHandler(uow UnitOfWorkFactory, logger *slog.Logger) *CreateReadingReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateReadingReportHandler{
		uow:    uow,
		logger: logger.With("command", "create_reading_report"),
	}
}

// Handle executes the create reading report command.
func (h *CreateReadingReportHandler) Handle(ctx context.Context, cmd CreateReadingReportCommand) (*CreateReadingReportResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var result CreateReadingReportResult

	err := h.uow.Execute(ctx, cmd.UserID, func(ctx context.Context, ws cascade.Workspace) error {
		report, err := reading.NewReadingReport(uuid.NewString(), cmd.UserID, cmd.ResourceID, cmd.CurrentPage)
		if err != nil {
			return err
		}

		if err := ws.Reading().CreateReport(ctx, report); err != nil {
			return err
		}
		ws.Collect(report)

		result = CreateReadingReportResult{ReportID: report.ID}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create_reading_report: %w", err)
	}

	h.logger.Info("reading report recorded",
		"user_id", cmd.UserID,
		"resource_id", cmd.ResourceID,
		"current_page", cmd.CurrentPage,
		"report_id", result.ReportID,
	)

	return &result, nil
}
