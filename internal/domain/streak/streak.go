package streak

import (
	"sort"
	"time"
)

// CurrentStreak computes the consecutive-day streak length from the user's
// logged dates. dates must contain only dates on or before today; order does
// not matter. The streak is zero unless the most recent logged date is today
// or yesterday; otherwise we walk backward counting exactly-one-day steps
// until the first gap.
func CurrentStreak(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	today = normalize(today)

	sorted := normalizeAll(dates)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].After(sorted[j])
	})

	last := sorted[0]
	if !last.Equal(today) && !last.Equal(today.AddDate(0, 0, -1)) {
		return 0
	}

	streak := 1
	check := last.AddDate(0, 0, -1)
	for _, d := range sorted[1:] {
		if !d.Equal(check) {
			break
		}
		streak++
		check = check.AddDate(0, 0, -1)
	}

	return streak
}

// DayStatus is the tri-state outcome for one day of the weekly view.
// HasStreak is nil for future dates within the week (outcome unknown).
type DayStatus struct {
	Date      time.Time
	HasStreak *bool
}

// WeekStatus builds the Monday-Sunday view for the week containing today.
// logged should contain the user's streak dates within that week; extra
// dates outside the week are ignored.
func WeekStatus(logged []time.Time, today time.Time) [7]DayStatus {
	today = normalize(today)
	monday := StartOfWeek(today)

	have := make(map[time.Time]bool, len(logged))
	for _, d := range normalizeAll(logged) {
		have[d] = true
	}

	var week [7]DayStatus
	for i := 0; i < 7; i++ {
		date := monday.AddDate(0, 0, i)
		week[i].Date = date
		if date.After(today) {
			continue // unknown, outcome not yet determined
		}
		v := have[date]
		week[i].HasStreak = &v
	}

	return week
}

// StartOfWeek returns the Monday of the week containing the given date.
func StartOfWeek(date time.Time) time.Time {
	date = normalize(date)
	daysSinceMonday := (int(date.Weekday()) - 1 + 7) % 7
	return date.AddDate(0, 0, -daysSinceMonday)
}

// IsConsecutiveRun reports whether the dates form an unbroken run of exactly
// want consecutive calendar days when sorted ascending.
func IsConsecutiveRun(dates []time.Time, want int) bool {
	if len(dates) != want {
		return false
	}

	sorted := normalizeAll(dates)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})

	for i := 1; i < len(sorted); i++ {
		if !sorted[i].Equal(sorted[i-1].AddDate(0, 0, 1)) {
			return false
		}
	}

	return true
}

// Window returns the n calendar dates ending on end, ascending.
func Window(end time.Time, n int) []time.Time {
	end = normalize(end)
	dates := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		dates = append(dates, end.AddDate(0, 0, -i))
	}
	return dates
}

func normalizeAll(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = normalize(d)
	}
	return out
}
