package messaging

import (
	"context"
	"log/slog"

	"github.com/readhabit/readhabit-hub/internal/application/query"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK VIEW INVALIDATOR
// Drops a user's cached streak view whenever a committed event changed what
// the view shows: a new streak log moves the current streak and the weekly
// row, a new exp entry moves the total. Works from the event payload only,
// so it handles remote events the same as local ones.
// ══════════════════════════════════════════════════════════════════════════════

// StreakViewInvalidator subscribes to committed events and invalidates the
// streak view cache for the affected user.
type StreakViewInvalidator struct {
	cache  query.StreakViewCache
	logger *slog.Logger
}

// NewStreakViewInvalidator creates a new StreakViewInvalidator.
func NewStreakViewInvalidator(cache query.StreakViewCache, logger *slog.Logger) *StreakViewInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreakViewInvalidator{
		cache:  cache,
		logger: logger.With("component", "streak_view_invalidator"),
	}
}

// Register subscribes the invalidator to the event types that move the view.
func (i *StreakViewInvalidator) Register(sub shared.EventSubscriber) error {
	for _, eventType := range []shared.EventType{
		shared.EventStreakLogCreated,
		shared.EventUserExpCreated,
	} {
		if err := sub.Subscribe(eventType, i.handle); err != nil {
			return err
		}
	}
	return nil
}

func (i *StreakViewInvalidator) handle(event shared.Event) error {
	userID, ok := event.Payload()["user_id"].(string)
	if !ok || userID == "" {
		i.logger.Warn("event payload missing user_id", "event_type", event.EventType())
		return nil
	}

	i.cache.Invalidate(context.Background(), userID)
	return nil
}
