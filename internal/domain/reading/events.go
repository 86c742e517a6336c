package reading

import (
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// DailyReadCreatedEvent is raised when new assigned material is published.
type DailyReadCreatedEvent struct {
	shared.BaseEvent
	DailyRead *DailyRead
}

// Payload implements shared.Event.
func (e DailyReadCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"daily_read_id": e.DailyRead.ID,
		"title":         e.DailyRead.Title,
		"category":      e.DailyRead.Category,
	}
}

// NewDailyReadCreatedEvent creates a new DailyReadCreatedEvent.
func NewDailyReadCreatedEvent(d *DailyRead) DailyReadCreatedEvent {
	return DailyReadCreatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventDailyReadCreated, d.ID),
		DailyRead: d,
	}
}

// ReadingReportCreatedEvent is raised when a user reports reading progress.
// It carries the full report so handlers need no additional lookups.
type ReadingReportCreatedEvent struct {
	shared.BaseEvent
	Report *ReadingReport
}

// Payload implements shared.Event.
func (e ReadingReportCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"report_id":    e.Report.ID,
		"user_id":      e.Report.UserID,
		"resource_id":  e.Report.ResourceID,
		"current_page": e.Report.CurrentPage,
	}
}

// NewReadingReportCreatedEvent creates a new ReadingReportCreatedEvent.
func NewReadingReportCreatedEvent(r *ReadingReport) ReadingReportCreatedEvent {
	return ReadingReportCreatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventReadingReportCreated, r.ID),
		Report:    r,
	}
}
