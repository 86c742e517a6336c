package xp

import (
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// UserExpCreatedEvent is raised for every new ledger entry. The snapshot
// projection folds it into the running total; external collaborators may
// consume it post-commit.
type UserExpCreatedEvent struct {
	shared.BaseEvent
	ExpEvent *UserExpEvent
}

// Payload implements shared.Event.
func (e UserExpCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.ExpEvent.UserID,
		"event_seq":  e.ExpEvent.EventSeq,
		"exp_amount": e.ExpEvent.ExpAmount,
		"event_kind": string(e.ExpEvent.EventKind),
		"ref_id":     e.ExpEvent.RefID,
	}
}

// NewUserExpCreatedEvent creates a new UserExpCreatedEvent.
func NewUserExpCreatedEvent(e *UserExpEvent) UserExpCreatedEvent {
	return UserExpCreatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventUserExpCreated, e.ID),
		ExpEvent:  e,
	}
}
