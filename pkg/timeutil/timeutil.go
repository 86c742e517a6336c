// Package timeutil defines the reading-day calendar. The product counts a
// day from midnight UTC+8 (the primary audience's timezone, no DST), so all
// streak dates are derived through a Clock configured with that offset
// rather than from the server's local time.
package timeutil

import (
	"time"
)

// DefaultOffsetHours is the reading-day boundary offset from UTC.
const DefaultOffsetHours = 8

// FormatDate is the standard date format (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// Clock resolves wall-clock instants to reading-day dates. The zero offset
// is a valid configuration (UTC reading days); use NewClock for the product
// default.
//
// now is swappable for tests; production clocks use time.Now.
type Clock struct {
	zone *time.Location
	now  func() time.Time
}

// NewClock creates a clock with the product's default UTC+8 reading day.
func NewClock() *Clock {
	return NewClockWithOffset(DefaultOffsetHours)
}

// NewClockWithOffset creates a clock whose reading day starts at midnight
// UTC+offsetHours. Negative offsets are valid.
func NewClockWithOffset(offsetHours int) *Clock {
	return &Clock{
		zone: time.FixedZone("reading-day", offsetHours*60*60),
		now:  time.Now,
	}
}

// NewFixedClock creates a clock frozen at the given instant, with the
// default offset. Intended for tests.
func NewFixedClock(at time.Time) *Clock {
	return &Clock{
		zone: time.FixedZone("reading-day", DefaultOffsetHours*60*60),
		now:  func() time.Time { return at },
	}
}

// Now returns the current instant in the reading-day zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.zone)
}

// Today returns the current reading-day date.
func (c *Clock) Today() time.Time {
	return c.DateOf(c.now())
}

// DateOf resolves an instant to its reading-day date. Dates are represented
// as midnight UTC so they compare with time.Equal and round-trip through a
// SQL date column unchanged.
func (c *Clock) DateOf(t time.Time) time.Time {
	local := t.In(c.zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the instant the given reading day began.
func (c *Clock) StartOfDay(t time.Time) time.Time {
	local := t.In(c.zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.zone)
}

// IsSameDay checks if two instants fall on the same reading day.
func (c *Clock) IsSameDay(t1, t2 time.Time) bool {
	return c.DateOf(t1).Equal(c.DateOf(t2))
}

// DaysBetween returns the number of reading days from t1's date to t2's
// date; negative when t2 is earlier.
func DaysBetween(t1, t2 time.Time) int {
	d1 := truncateDate(t1)
	d2 := truncateDate(t2)
	return int(d2.Sub(d1).Hours() / 24)
}

// IsConsecutiveDay checks if d2 is the calendar day after d1.
func IsConsecutiveDay(d1, d2 time.Time) bool {
	return DaysBetween(d1, d2) == 1
}

// ParseDate parses a YYYY-MM-DD string into a date value.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(FormatDate, value)
}

// FormatDateStr formats a date value as YYYY-MM-DD.
func FormatDateStr(t time.Time) string {
	return t.Format(FormatDate)
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
