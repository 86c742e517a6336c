package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// IntervalSchedule schedules a job to run at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new IntervalSchedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{
		Interval: interval,
	}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}

// intervalPrefix marks an interval expression, e.g. "@every 15m".
const intervalPrefix = "@every "

// ParseSchedule parses a schedule expression. It accepts either a
// five-field cron expression or "@every <duration>"; the interval form is
// what staging environments use to run maintenance jobs frequently enough
// to observe.
func ParseSchedule(expr string) (Schedule, error) {
	if strings.HasPrefix(expr, intervalPrefix) {
		interval, err := time.ParseDuration(strings.TrimSpace(strings.TrimPrefix(expr, intervalPrefix)))
		if err != nil {
			return nil, fmt.Errorf("invalid interval expression %q: %w", expr, err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("invalid interval expression %q: interval must be positive", expr)
		}
		return NewIntervalSchedule(interval), nil
	}
	return ParseCronSchedule(expr)
}
