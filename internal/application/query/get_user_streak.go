package query

import (
	"context"
	"errors"
	"log/slog"

	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
	"github.com/readhabit/readhabit-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER STREAK QUERY
// The home-screen view: current streak length, the Monday-Sunday weekly
// status, and the user's exp total from the snapshot. Served from a short
// TTL cache when available; a cache outage degrades to database reads.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserStreakQuery contains the parameters for a streak view lookup.
type GetUserStreakQuery struct {
	// UserID is the user whose streak view is fetched.
	UserID string
}

// Validate validates the query.
func (q GetUserStreakQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_user_streak: user_id is required")
	}
	return nil
}

// DayStatusDTO is the tri-state status of one weekday. HasStreak is nil for
// days that have not happened yet.
type DayStatusDTO struct {
	Date      string `json:"date"`
	HasStreak *bool  `json:"has_streak"`
}

// UserStreakDTO is the streak view.
type UserStreakDTO struct {
	UserID        string          `json:"user_id"`
	CurrentStreak int             `json:"current_streak"`
	Week          [7]DayStatusDTO `json:"week"`
	TotalExp      int             `json:"total_exp"`
}

// StreakViewCache caches assembled streak views. Implementations must treat
// every error as a miss; the query path never fails because of the cache.
type StreakViewCache interface {
	Get(ctx context.Context, userID string) (*UserStreakDTO, bool)
	Set(ctx context.Context, userID string, view *UserStreakDTO)
	Invalidate(ctx context.Context, userID string)
}

// GetUserStreakHandler handles the GetUserStreakQuery.
type GetUserStreakHandler struct {
	streakRepo streak.Repository
	xpRepo     xp.Repository
	cache      StreakViewCache
	clock      *timeutil.Clock
	logger     *slog.Logger
}

// NewGetUserStreakHandler creates a new GetUserStreakHandler. cache may be
// nil to serve every request from the database.
func NewGetUserStreakHandler(streakRepo streak.Repository, xpRepo xp.Repository, cache StreakViewCache, clock *timeutil.Clock, logger *slog.Logger) *GetUserStreakHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetUserStreakHandler{
		streakRepo: streakRepo,
		xpRepo:     xpRepo,
		cache:      cache,
		clock:      clock,
		logger:     logger.With("query", "get_user_streak"),
	}
}

// Handle executes the get user streak query.
func (h *GetUserStreakHandler) Handle(ctx context.Context, q GetUserStreakQuery) (*UserStreakDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if view, ok := h.cache.Get(ctx, q.UserID); ok {
			return view, nil
		}
	}

	view, err := h.build(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		h.cache.Set(ctx, q.UserID, view)
	}

	return view, nil
}

func (h *GetUserStreakHandler) build(ctx context.Context, userID string) (*UserStreakDTO, error) {
	today := h.clock.Today()

	dates, err := h.streakRepo.GetDatesOnOrBefore(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	monday := streak.StartOfWeek(today)
	weekDates, err := h.streakRepo.GetDatesInRange(ctx, userID, monday, monday.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}

	totalExp := 0
	snapshot, err := h.xpRepo.GetSnapshot(ctx, userID)
	if err != nil {
		if !shared.IsNotFound(err) {
			return nil, err
		}
		// No grants yet; zero is correct.
	} else {
		totalExp = snapshot.TotalExp
	}

	view := &UserStreakDTO{
		UserID:        userID,
		CurrentStreak: streak.CurrentStreak(dates, today),
		TotalExp:      totalExp,
	}

	for i, day := range streak.WeekStatus(weekDates, today) {
		view.Week[i] = DayStatusDTO{
			Date:      timeutil.FormatDateStr(day.Date),
			HasStreak: day.HasStreak,
		}
	}

	return view, nil
}
