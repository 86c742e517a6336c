package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// Registry maps event types to their ordered handler lists.
//
// Handlers for one event type run in registration order. The current
// handlers are mutually independent, so order between them does not affect
// correctness - but that independence must be re-verified before adding a
// handler that reads state another handler of the same event type writes.
type Registry struct {
	mu       sync.RWMutex
	handlers map[shared.EventType][]Handler
	logger   *slog.Logger
	metrics  *Metrics
}

// NewRegistry creates an empty handler registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlers: make(map[shared.EventType][]Handler),
		logger:   logger,
		metrics:  NewMetrics(),
	}
}

// Register appends a handler to the event type's dispatch list.
func (r *Registry) Register(eventType shared.EventType, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[eventType] = append(r.handlers[eventType], handler)
	r.logger.Debug("registered cascade handler",
		"event_type", eventType,
		"handler", handler.Name(),
		"position", len(r.handlers[eventType]),
	)
}

// HandlersFor returns the ordered handlers for an event type.
func (r *Registry) HandlersFor(eventType shared.EventType) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := make([]Handler, len(r.handlers[eventType]))
	copy(handlers, r.handlers[eventType])
	return handlers
}

// Dispatch drains the queue, delivering each event to every handler
// registered for its concrete type, in registration order. Events raised by
// handlers during dispatch join the same queue and are processed before
// Dispatch returns (breadth-first over raise order).
//
// The first handler error stops dispatch and is returned; the caller must
// roll back the unit of work so no partial cascade is ever visible.
func (r *Registry) Dispatch(ctx context.Context, ws Workspace, queue *Queue) error {
	for event := queue.Pop(); event != nil; event = queue.Pop() {
		if err := r.dispatchOne(ctx, ws, event); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) dispatchOne(ctx context.Context, ws Workspace, event shared.Event) error {
	handlers := r.HandlersFor(event.EventType())
	if len(handlers) == 0 {
		r.logger.Debug("no handlers for event", "event_type", event.EventType())
		return nil
	}

	r.metrics.RecordDispatch(event.EventType())

	for _, h := range handlers {
		start := time.Now()
		err := h.Handle(ctx, ws, event)
		r.metrics.RecordHandler(event.EventType(), time.Since(start), err == nil)

		if err != nil {
			r.logger.Error("cascade handler failed, aborting unit of work",
				"event_type", event.EventType(),
				"handler", h.Name(),
				"aggregate_id", event.AggregateID(),
				"error", err,
			)
			return fmt.Errorf("cascade handler %s: %w", h.Name(), err)
		}
	}

	return nil
}

// Metrics tracks cascade dispatch counts and handler timings.
type Metrics struct {
	mu sync.Mutex

	DispatchedByType map[shared.EventType]int64
	HandlerRuns      int64
	HandlerFailures  int64
	HandlerDuration  time.Duration
}

// NewMetrics creates a metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		DispatchedByType: make(map[shared.EventType]int64),
	}
}

// RecordDispatch records an event delivery.
func (m *Metrics) RecordDispatch(eventType shared.EventType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DispatchedByType[eventType]++
}

// RecordHandler records one handler execution.
func (m *Metrics) RecordHandler(eventType shared.EventType, d time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.HandlerRuns++
	m.HandlerDuration += d
	if !ok {
		m.HandlerFailures++
	}
}

// Metrics returns the registry's metrics tracker.
func (r *Registry) Metrics() *Metrics {
	return r.metrics
}
