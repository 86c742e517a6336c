package streak

import (
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// StreakLogCreatedEvent is raised exactly once per (user, date), when the
// user's activity first satisfies the streak condition on that date.
type StreakLogCreatedEvent struct {
	shared.BaseEvent
	StreakLog *StreakLog
}

// Payload implements shared.Event.
func (e StreakLogCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"streak_log_id": e.StreakLog.ID,
		"user_id":       e.StreakLog.UserID,
		"streak_date":   e.StreakLog.StreakDate.Format("2006-01-02"),
	}
}

// NewStreakLogCreatedEvent creates a new StreakLogCreatedEvent.
func NewStreakLogCreatedEvent(s *StreakLog) StreakLogCreatedEvent {
	return StreakLogCreatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventStreakLogCreated, s.ID),
		StreakLog: s,
	}
}
