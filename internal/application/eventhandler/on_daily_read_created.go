package eventhandler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// CATEGORY COLLECTION
//
// Daily reads carry a free-form category string. This handler collects the
// distinct names into the reading_categories table so the catalog can filter
// by category without scanning daily reads.
// ═══════════════════════════════════════════════════════════════════════════

// CategoryHandler records a daily read's category on first sight.
type CategoryHandler struct {
	logger *slog.Logger
}

// NewCategoryHandler creates the handler.
func NewCategoryHandler(logger *slog.Logger) *CategoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryHandler{logger: logger.With("handler", "reading_category")}
}

// Name implements cascade.Handler.
func (h *CategoryHandler) Name() string { return "reading_category" }

// Handle implements cascade.Handler.
func (h *CategoryHandler) Handle(ctx context.Context, ws cascade.Workspace, event shared.Event) error {
	created, ok := event.(reading.DailyReadCreatedEvent)
	if !ok {
		h.logger.Warn("received non-DailyReadCreatedEvent", "event_type", event.EventType())
		return nil
	}

	name := strings.TrimSpace(created.DailyRead.Category)
	if name == "" {
		return nil
	}

	exists, err := ws.Reading().CategoryExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	category, err := reading.NewReadingCategory(uuid.NewString(), name)
	if err != nil {
		return err
	}

	if err := ws.Reading().CreateCategory(ctx, category); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil
		}
		return err
	}

	h.logger.Info("reading category recorded", "category", name)
	return nil
}
