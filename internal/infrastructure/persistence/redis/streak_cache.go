package redis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/readhabit/readhabit-hub/internal/application/query"
	"github.com/readhabit/readhabit-hub/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK VIEW CACHE
// Caches the assembled home-screen streak view. The view changes only when a
// unit of work commits for the user, so it is invalidated from the
// post-commit publish path and carries a short TTL as a backstop.
//
// Every method swallows Redis errors: a broken cache turns into plain
// database reads, never into a failed query. The circuit breaker keeps a
// down Redis from adding a timeout to every request.
// ══════════════════════════════════════════════════════════════════════════════

// StreakViewCache implements query.StreakViewCache over Redis.
type StreakViewCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewStreakViewCache creates a new StreakViewCache.
func NewStreakViewCache(cache *Cache, logger *slog.Logger) *StreakViewCache {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "streak_view_cache")

	breaker := circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
		logger.Warn("cache circuit state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	})

	return &StreakViewCache{
		cache:   cache,
		breaker: breaker,
		logger:  logger,
	}
}

// Get returns the cached view for a user, or (nil, false) on miss, cache
// error, or open circuit.
func (c *StreakViewCache) Get(ctx context.Context, userID string) (*query.UserStreakDTO, bool) {
	var view query.UserStreakDTO

	err := c.breaker.ExecuteWithFallback(ctx,
		func(ctx context.Context) error {
			return c.cache.Get(ctx, StreakViewKey(userID), &view)
		},
		func(error) error {
			// An open circuit reads as a miss; the query falls back to
			// Postgres without waiting on a dead Redis.
			return ErrCacheMiss
		},
	)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("streak view cache read failed", "user_id", userID, "error", err)
		}
		return nil, false
	}

	return &view, true
}

// Set stores the assembled view with the standard TTL.
func (c *StreakViewCache) Set(ctx context.Context, userID string, view *query.UserStreakDTO) {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Set(ctx, StreakViewKey(userID), view, TTLStreakView)
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		c.logger.Warn("streak view cache write failed", "user_id", userID, "error", err)
	}
}

// Invalidate drops the cached view for a user. A failed invalidation is only
// logged; the TTL bounds how long the stale view can survive.
func (c *StreakViewCache) Invalidate(ctx context.Context, userID string) {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Delete(ctx, StreakViewKey(userID))
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		c.logger.Warn("streak view cache invalidation failed", "user_id", userID, "error", err)
	}
}
