package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
	"github.com/readhabit/readhabit-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork is one transaction plus its event queue. It implements
// cascade.Workspace: repositories run over the transaction, and events
// collected during the work are dispatched through the cascade before the
// transaction commits. Commit and cascade are atomic; nothing downstream of
// a failed handler ever becomes visible.
type UnitOfWork struct {
	tx    pgx.Tx
	queue *cascade.Queue

	quizRepo    *QuizRepository
	readingRepo *ReadingRepository
	streakRepo  *StreakRepository
	xpRepo      *XPRepository
}

// Quiz implements cascade.Workspace.
func (u *UnitOfWork) Quiz() quiz.Repository { return u.quizRepo }

// Reading implements cascade.Workspace.
func (u *UnitOfWork) Reading() reading.Repository { return u.readingRepo }

// Streaks implements cascade.Workspace.
func (u *UnitOfWork) Streaks() streak.Repository { return u.streakRepo }

// XP implements cascade.Workspace.
func (u *UnitOfWork) XP() xp.Repository { return u.xpRepo }

// Raise implements cascade.Workspace.
func (u *UnitOfWork) Raise(event shared.Event) {
	u.queue.Push(event)
}

// Collect implements cascade.Workspace.
func (u *UnitOfWork) Collect(carrier shared.EventCarrier) {
	for _, event := range carrier.PullEvents() {
		u.queue.Push(event)
	}
}

// UnitOfWorkFactory opens units of work against the shared pool and runs
// them to completion: lock, work, cascade, commit, publish.
type UnitOfWorkFactory struct {
	conn      *Connection
	registry  *cascade.Registry
	publisher shared.EventPublisher
	retrier   *retry.Retrier
	logger    *slog.Logger
}

// NewUnitOfWorkFactory creates a factory. publisher may be nil when no
// post-commit delivery is wanted (tests, one-shot jobs).
func NewUnitOfWorkFactory(conn *Connection, registry *cascade.Registry, publisher shared.EventPublisher, logger *slog.Logger) *UnitOfWorkFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitOfWorkFactory{
		conn:      conn,
		registry:  registry,
		publisher: publisher,
		retrier:   retry.ConflictRetrier(),
		logger:    logger.With("component", "unit_of_work"),
	}
}

// Execute runs fn inside a unit of work serialized per user.
//
// A per-user advisory lock is taken first, so two units of work for the same
// user never interleave: max+1 sequence allocation and exists-checks read a
// settled state. Cross-user work proceeds in parallel. If a uniqueness
// constraint still fires (the lock path was bypassed by an out-of-band
// writer), the whole unit of work is rolled back and retried once; on the
// second pass the idempotence guards turn the conflicting write into a no-op.
func (f *UnitOfWorkFactory) Execute(ctx context.Context, userID string, fn func(ctx context.Context, ws cascade.Workspace) error) error {
	return f.retrier.Do(ctx, func(ctx context.Context) error {
		err := f.executeOnce(ctx, userID, fn)
		if err != nil && shared.IsConstraintViolation(err) {
			f.logger.Warn("unit of work lost a uniqueness race, retrying",
				"user_id", userID,
				"error", err,
			)
			return retry.Retryable(err)
		}
		return err
	})
}

func (f *UnitOfWorkFactory) executeOnce(ctx context.Context, userID string, fn func(ctx context.Context, ws cascade.Workspace) error) error {
	tx, err := f.conn.BeginTx(ctx, DefaultTxOptions())
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if userID != "" {
		if err := lockUser(ctx, tx, userID); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}

	uow := &UnitOfWork{
		tx:          tx,
		queue:       &cascade.Queue{},
		quizRepo:    NewQuizRepository(tx),
		readingRepo: NewReadingRepository(tx),
		streakRepo:  NewStreakRepository(tx),
		xpRepo:      NewXPRepository(tx),
	}

	if err := fn(ctx, uow); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := f.registry.Dispatch(ctx, uow, uow.queue); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	f.publishDrained(uow.queue.Drained())
	return nil
}

// publishDrained delivers committed events to outbound subscribers. Failures
// are logged, not returned: the transaction is already durable and outbound
// consumers tolerate gaps.
func (f *UnitOfWorkFactory) publishDrained(events []shared.Event) {
	if f.publisher == nil {
		return
	}

	for _, event := range events {
		if err := f.publisher.Publish(event); err != nil {
			f.logger.Warn("post-commit publish failed",
				"event_type", event.EventType(),
				"aggregate_id", event.AggregateID(),
				"error", err,
			)
		}
	}
}

// lockUser takes a transaction-scoped advisory lock for the user. Released
// automatically at commit or rollback.
func lockUser(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", userID)
	return err
}
