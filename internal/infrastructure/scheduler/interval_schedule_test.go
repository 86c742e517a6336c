package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(15 * time.Minute)

	now := time.Date(2025, 5, 7, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(15*time.Minute), s.Next(now))
}

func TestIntervalSchedule_String(t *testing.T) {
	s := NewIntervalSchedule(90 * time.Second)
	assert.Equal(t, "@every 1m30s", s.String())
}

func TestParseSchedule_Interval(t *testing.T) {
	schedule, err := ParseSchedule("@every 15m")
	require.NoError(t, err)

	interval, ok := schedule.(*IntervalSchedule)
	require.True(t, ok)
	assert.Equal(t, 15*time.Minute, interval.Interval)
}

func TestParseSchedule_FallsBackToCron(t *testing.T) {
	schedule, err := ParseSchedule("0 4 * * *")
	require.NoError(t, err)

	_, ok := schedule.(*CronSchedule)
	assert.True(t, ok)
}

func TestParseSchedule_InvalidExpressions(t *testing.T) {
	cases := []string{
		"@every ",
		"@every soon",
		"@every -5m",
		"@every 0s",
		"not a schedule",
	}
	for _, expr := range cases {
		_, err := ParseSchedule(expr)
		assert.Error(t, err, "expression %q should be rejected", expr)
	}
}
