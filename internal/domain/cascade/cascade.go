// Package cascade implements the domain event bus: transactional pub/sub
// within one unit of work. Aggregates raise typed events; the unit of work
// queues them; Dispatch drains the queue synchronously before commit,
// invoking every registered handler for each event's type. Handlers may
// raise further events, which join the same queue and are processed
// breadth-first over raise order. Any handler error aborts the entire unit
// of work - a cascade never partially commits.
package cascade

import (
	"context"

	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

// Workspace is the view of a unit of work given to handlers. All repository
// access goes through the same transaction as the write that raised the
// event; Raise queues a follow-up event onto the same cascade.
//
// Handlers must not assume isolation from concurrently-dispatching units of
// work for the same user: correctness comes from the storage uniqueness
// constraints, not from handler-level locking.
type Workspace interface {
	Quiz() quiz.Repository
	Reading() reading.Repository
	Streaks() streak.Repository
	XP() xp.Repository

	// Raise queues an event for dispatch within this unit of work.
	Raise(event shared.Event)

	// Collect moves an aggregate's raised events onto this unit of work's
	// queue. Callers invoke it after the aggregate's insert succeeds, so a
	// failed write never leaks its events into the cascade.
	Collect(carrier shared.EventCarrier)
}

// Handler reacts to one concrete event type within a unit of work.
type Handler interface {
	// Name identifies the handler in logs and registration listings.
	Name() string

	// Handle processes the event. Returning an error aborts the whole
	// unit of work, including all writes made by earlier handlers.
	Handle(ctx context.Context, ws Workspace, event shared.Event) error
}

// Queue is the FIFO event queue of one unit of work. Draining it
// breadth-first preserves raise order across cascade levels.
type Queue struct {
	pending []shared.Event
	drained []shared.Event
}

// Push appends an event to the queue.
func (q *Queue) Push(event shared.Event) {
	q.pending = append(q.pending, event)
}

// Pop removes and returns the oldest pending event, or nil when empty.
// Popped events are kept in dispatch order for post-commit publishing.
func (q *Queue) Pop() shared.Event {
	if len(q.pending) == 0 {
		return nil
	}
	event := q.pending[0]
	q.pending = q.pending[1:]
	q.drained = append(q.drained, event)
	return event
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Drained returns every event that has passed through the queue, in
// dispatch order.
func (q *Queue) Drained() []shared.Event {
	return q.drained
}
