// Package shared contains common domain types, errors, and events
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven cascade.
// Each event represents something significant that happened in the domain.
const (
	// Reading events
	EventDailyReadCreated     EventType = "reading.daily_read_created"
	EventReadingReportCreated EventType = "reading.report_created"

	// Quiz events
	EventQuizAnswered EventType = "quiz.answered"

	// Streak events
	EventStreakLogCreated EventType = "streak.log_created"

	// XP events
	EventUserExpCreated EventType = "xp.exp_created"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Aggregate raise lists
// ═══════════════════════════════════════════════════════════════════════════

// AggregateRoot is embedded by entities that raise domain events.
// Events accumulate on the aggregate until the persistence layer collects
// them into the unit of work's queue, exactly once per save.
type AggregateRoot struct {
	events []Event
}

// Raise queues an event against this aggregate.
func (a *AggregateRoot) Raise(event Event) {
	a.events = append(a.events, event)
}

// PullEvents returns the raised events and clears the list.
func (a *AggregateRoot) PullEvents() []Event {
	events := a.events
	a.events = nil
	return events
}

// EventCarrier is implemented by any aggregate with a raise list.
type EventCarrier interface {
	PullEvents() []Event
}

// ═══════════════════════════════════════════════════════════════════════════
// Outbound publishing (post-commit, for external collaborators)
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing committed events to
// collaborators outside the core (read-side projections, notifications).
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to published events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error
}
