// Package main is the entry point for the ReadHabit background worker.
//
// The worker runs maintenance jobs on a schedule. Today that is the nightly
// snapshot reconciliation pass: it verifies every user's exp snapshot
// against the ledger sum and repairs any divergence, so the read side can
// keep trusting the snapshot table.
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
	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/infrastructure/persistence/postgres"
	"github.com/readhabit/readhabit-hub/internal/infrastructure/scheduler"
	"github.com/readhabit/readhabit-hub/internal/infrastructure/scheduler/jobs"
	"github.com/readhabit/readhabit-hub/pkg/logger"
)

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
		Service: cfg.App.Name + "-worker",
	})
	slog.SetDefault(log)

	log.Info("starting readhabit worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
	)

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled; nothing to run")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. RECONCILIATION HANDLER
	// Reconciliation repairs run in per-user units of work. The worker
	// registers no cascade branches: snapshot repair is a projection fix,
	// not gameplay, so it must not grant anything.
	// ─────────────────────────────────────────────────────────────────────────
	registry := cascade.NewRegistry(log)
	uow := postgres.NewUnitOfWorkFactory(conn, registry, nil, log)

	reconcileHandler := command.NewReconcileSnapshotsHandler(
		uow,
		postgres.NewXPRepository(conn),
		log,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	schedCfg := scheduler.DefaultSchedulerConfig()
	schedCfg.Logger = log
	sched := scheduler.NewScheduler(schedCfg)

	schedule, err := scheduler.ParseSchedule(cfg.Scheduler.ReconcileCron)
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", cfg.Scheduler.ReconcileCron, err)
	}

	reconcileJob := jobs.NewReconcileSnapshotsJob(reconcileHandler, log, jobs.ReconcileSnapshotsConfig{
		Repair:  cfg.Scheduler.ReconcileRepair,
		Timeout: cfg.Scheduler.JobTimeout,
	})

	if err := sched.Register(reconcileJob, schedule); err != nil {
		return fmt.Errorf("failed to register reconcile job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("readhabit worker is running",
		"reconcile_cron", cfg.Scheduler.ReconcileCron,
		"reconcile_repair", cfg.Scheduler.ReconcileRepair,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}

	log.Info("stopping scheduler...")
	if err := sched.Stop(); err != nil {
		log.Error("scheduler stop failed", "error", err)
	}

	log.Info("shutdown completed")
	return nil
}
