package query

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
	"github.com/readhabit/readhabit-hub/pkg/timeutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubStreakRepo serves dates from a fixed list.
type stubStreakRepo struct {
	dates []time.Time
}

func (r *stubStreakRepo) Create(ctx context.Context, log *streak.StreakLog) error { return nil }
func (r *stubStreakRepo) ExistsForDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	return false, nil
}

func (r *stubStreakRepo) GetDatesOnOrBefore(ctx context.Context, userID string, date time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, d := range r.dates {
		if !d.After(date) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out, nil
}

func (r *stubStreakRepo) GetDatesInRange(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, d := range r.dates {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (r *stubStreakRepo) GetLogsForDates(ctx context.Context, userID string, dates []time.Time) ([]*streak.StreakLog, error) {
	return nil, nil
}

// stubXPRepo serves a single optional snapshot.
type stubXPRepo struct {
	snapshot *xp.UserExpSnapshot
}

func (r *stubXPRepo) CreateEvent(ctx context.Context, event *xp.UserExpEvent) error { return nil }
func (r *stubXPRepo) ExistsForRef(ctx context.Context, userID string, kind xp.EventKind, refID string) (bool, error) {
	return false, nil
}
func (r *stubXPRepo) GetMaxEventSeq(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}
func (r *stubXPRepo) SumLedger(ctx context.Context, userID string) (int, error) { return 0, nil }
func (r *stubXPRepo) GetSnapshot(ctx context.Context, userID string) (*xp.UserExpSnapshot, error) {
	if r.snapshot == nil {
		return nil, shared.ErrSnapshotNotFound
	}
	return r.snapshot, nil
}
func (r *stubXPRepo) CreateSnapshot(ctx context.Context, snapshot *xp.UserExpSnapshot) error {
	return nil
}
func (r *stubXPRepo) UpdateSnapshot(ctx context.Context, snapshot *xp.UserExpSnapshot) error {
	return nil
}
func (r *stubXPRepo) GetLedgerUserIDs(ctx context.Context) ([]string, error) { return nil, nil }

// recordingCache counts hits and stores the last view set.
type recordingCache struct {
	stored map[string]*UserStreakDTO
	gets   int
	sets   int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{stored: make(map[string]*UserStreakDTO)}
}

func (c *recordingCache) Get(ctx context.Context, userID string) (*UserStreakDTO, bool) {
	c.gets++
	view, ok := c.stored[userID]
	return view, ok
}

func (c *recordingCache) Set(ctx context.Context, userID string, view *UserStreakDTO) {
	c.sets++
	c.stored[userID] = view
}

func (c *recordingCache) Invalidate(ctx context.Context, userID string) {
	delete(c.stored, userID)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixedClock freezes today at Wednesday 2025-05-07 (reading day).
func fixedClock() *timeutil.Clock {
	return timeutil.NewFixedClock(time.Date(2025, 5, 7, 10, 0, 0, 0, time.UTC))
}

func TestGetUserStreak_AssemblesView(t *testing.T) {
	streakRepo := &stubStreakRepo{dates: []time.Time{
		day(2025, 5, 7),
		day(2025, 5, 6),
		day(2025, 5, 5),
		// gap
		day(2025, 5, 2),
	}}
	xpRepo := &stubXPRepo{snapshot: &xp.UserExpSnapshot{UserID: "user1", TotalExp: 370, LastSeq: 5}}

	h := NewGetUserStreakHandler(streakRepo, xpRepo, nil, fixedClock(), testLogger())

	view, err := h.Handle(context.Background(), GetUserStreakQuery{UserID: "user1"})
	require.NoError(t, err)

	assert.Equal(t, "user1", view.UserID)
	assert.Equal(t, 3, view.CurrentStreak)
	assert.Equal(t, 370, view.TotalExp)

	// Monday through Wednesday logged, rest of the week undetermined or
	// missed; Thursday onward is in the future.
	assert.Equal(t, "2025-05-05", view.Week[0].Date)
	require.NotNil(t, view.Week[0].HasStreak)
	assert.True(t, *view.Week[0].HasStreak)
	require.NotNil(t, view.Week[2].HasStreak)
	assert.True(t, *view.Week[2].HasStreak)
	assert.Nil(t, view.Week[3].HasStreak)
	assert.Nil(t, view.Week[6].HasStreak)
}

func TestGetUserStreak_NoActivity(t *testing.T) {
	h := NewGetUserStreakHandler(&stubStreakRepo{}, &stubXPRepo{}, nil, fixedClock(), testLogger())

	view, err := h.Handle(context.Background(), GetUserStreakQuery{UserID: "user1"})
	require.NoError(t, err)

	assert.Equal(t, 0, view.CurrentStreak)
	assert.Equal(t, 0, view.TotalExp)
}

func TestGetUserStreak_Validation(t *testing.T) {
	h := NewGetUserStreakHandler(&stubStreakRepo{}, &stubXPRepo{}, nil, fixedClock(), testLogger())

	_, err := h.Handle(context.Background(), GetUserStreakQuery{})
	assert.Error(t, err)
}

func TestGetUserStreak_CacheMissThenHit(t *testing.T) {
	cache := newRecordingCache()
	streakRepo := &stubStreakRepo{dates: []time.Time{day(2025, 5, 7)}}
	h := NewGetUserStreakHandler(streakRepo, &stubXPRepo{}, cache, fixedClock(), testLogger())

	first, err := h.Handle(context.Background(), GetUserStreakQuery{UserID: "user1"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := h.Handle(context.Background(), GetUserStreakQuery{UserID: "user1"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets) // no rebuild on the hit
	assert.Equal(t, first, second)
	assert.Equal(t, 2, cache.gets)
}
