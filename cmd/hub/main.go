// Package main is the entry point for the ReadHabit hub service.
//
// The hub hosts the transactional core of the daily-reading product: the
// unit of work, the synchronous event cascade (quiz pass -> streak log ->
// exp grants -> snapshot), and the read-side queries with their Redis view
// cache. Delivery layers mount on top of the application container built
// here; the process itself stays alive until it receives a shutdown signal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/readhabit/readhabit-hub/config"
	"github.com/readhabit/readhabit-hub/internal/application/command"
	"github.com/readhabit/readhabit-hub/internal/application/eventhandler"
	"github.com/readhabit/readhabit-hub/internal/application/query"
	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/infrastructure/messaging"
	"github.com/readhabit/readhabit-hub/internal/infrastructure/persistence/postgres"
	"github.com/readhabit/readhabit-hub/internal/infrastructure/persistence/redis"
	"github.com/readhabit/readhabit-hub/pkg/logger"
	"github.com/readhabit/readhabit-hub/pkg/timeutil"
)

// eventBus is the composed publish/subscribe surface both bus
// implementations provide.
type eventBus interface {
	shared.EventPublisher
	shared.EventSubscriber
	Close() error
}

// App holds the wired application container.
type App struct {
	Config *config.Config
	Clock  *timeutil.Clock

	// Commands
	CreateDailyRead     *command.CreateDailyReadHandler
	CreateReadingReport *command.CreateReadingReportHandler
	SubmitQuizAnswer    *command.SubmitQuizAnswerHandler

	// Queries
	GetQuizResult *query.GetQuizResultHandler
	GetUserStreak *query.GetUserStreakHandler
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level:   cfg.Observability.LogLevel,
		Format:  logger.Format(cfg.Observability.LogFormat),
		Service: cfg.App.Name,
	})
	slog.SetDefault(log)

	log.Info("starting readhabit hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"day_offset_hours", cfg.App.DayOffsetHours,
	)

	app, cleanup, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	log.Info("readhabit hub is running",
		"reading_day", timeutil.FormatDateStr(app.Clock.Today()),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	return nil
}

// newApp wires the application container: database, migrations, optional
// Redis, the post-commit event bus, the cascade registry, and the command
// and query handlers. The returned cleanup releases every acquired resource
// in reverse wiring order; on error the partial wiring is already released.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 1. DATABASE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fail(fmt.Errorf("failed to connect to database: %w", err))
	}
	closers = append(closers, conn.Close)

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fail(fmt.Errorf("failed to run migrations: %w", err))
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 2. REDIS (optional; everything degrades to Postgres without it)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			closers = append(closers, func() { _ = redisCache.Close() })
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS (post-commit fanout)
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log

	var bus eventBus
	if redisCache != nil {
		bus, err = messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redis.NewEventBusAdapter(redisCache),
			LocalBusConfig: busCfg,
			Logger:         log,
		})
		if err != nil {
			return fail(fmt.Errorf("failed to start redis event bus: %w", err))
		}
	} else {
		bus = messaging.NewInMemoryEventBus(busCfg)
	}
	closers = append(closers, func() { _ = bus.Close() })

	// ─────────────────────────────────────────────────────────────────────────
	// 4. READ-SIDE CACHE
	// ─────────────────────────────────────────────────────────────────────────
	var streakCache query.StreakViewCache
	if redisCache != nil && cfg.Features.IsEnabled(config.FeatureCacheStreakView, nil) {
		cache := redis.NewStreakViewCache(redisCache, log)
		streakCache = cache

		invalidator := messaging.NewStreakViewInvalidator(cache, log)
		if err := invalidator.Register(bus); err != nil {
			return fail(fmt.Errorf("failed to register cache invalidator: %w", err))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. CASCADE AND UNIT OF WORK
	// ─────────────────────────────────────────────────────────────────────────
	clock := timeutil.NewClockWithOffset(cfg.App.DayOffsetHours)

	registry := cascade.NewRegistry(log)
	toggles := eventhandler.Toggles{
		Streaks:     cfg.Features.IsEnabled(config.FeatureGamificationStreaks, nil),
		StreakBonus: cfg.Features.IsEnabled(config.FeatureGamificationStreakBonus, nil),
		ReadingExp:  cfg.Features.IsEnabled(config.FeatureGamificationReadingExp, nil),
		QuizExp:     cfg.Features.IsEnabled(config.FeatureGamificationQuizExp, nil),
		Categories:  cfg.Features.IsEnabled(config.FeatureContentCategories, nil),
	}
	eventhandler.RegisterAll(registry, clock, cfg.Rewards.ToRewards(), toggles, log)

	uow := postgres.NewUnitOfWorkFactory(conn, registry, bus, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION CONTAINER
	// ─────────────────────────────────────────────────────────────────────────
	app := &App{
		Config:              cfg,
		Clock:               clock,
		CreateDailyRead:     command.NewCreateDailyReadHandler(uow, log),
		CreateReadingReport: command.NewCreateReadingReportHandler(uow, log),
		SubmitQuizAnswer:    command.NewSubmitQuizAnswerHandler(uow, log),
		GetQuizResult: query.NewGetQuizResultHandler(
			postgres.NewQuizRepository(conn),
			postgres.NewReadingRepository(conn),
			log,
		),
		GetUserStreak: query.NewGetUserStreakHandler(
			postgres.NewStreakRepository(conn),
			postgres.NewXPRepository(conn),
			streakCache,
			clock,
			log,
		),
	}

	return app, cleanup, nil
}
