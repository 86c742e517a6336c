package eventhandler

// In-memory repositories and a workspace for exercising the cascade without
// a database. The fakes enforce the same uniqueness rules the storage
// constraints do, so idempotence paths behave as they would in production.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
	"github.com/readhabit/readhabit-hub/pkg/timeutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ─────────────────────────────────────────────────────────────────────────────
// Quiz repository
// ─────────────────────────────────────────────────────────────────────────────

type memQuizRepo struct {
	questions map[string][]*quiz.QuizQuestion
	answers   []*quiz.QuizAnswer
}

func newMemQuizRepo() *memQuizRepo {
	return &memQuizRepo{questions: make(map[string][]*quiz.QuizQuestion)}
}

func (r *memQuizRepo) CreateAnswer(ctx context.Context, a *quiz.QuizAnswer) error {
	for _, existing := range r.answers {
		if existing.UserID == a.UserID && existing.DailyReadID == a.DailyReadID &&
			existing.QuestionSeq == a.QuestionSeq && existing.RetrySeq == a.RetrySeq {
			return shared.ErrConstraintViolation
		}
	}
	r.answers = append(r.answers, a)
	return nil
}

func (r *memQuizRepo) GetAnswers(ctx context.Context, userID, dailyReadID string) ([]*quiz.QuizAnswer, error) {
	var out []*quiz.QuizAnswer
	for _, a := range r.answers {
		if a.UserID == userID && a.DailyReadID == dailyReadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memQuizRepo) GetMaxRetrySeq(ctx context.Context, userID, dailyReadID string, questionSeq int) (int, error) {
	max := 0
	for _, a := range r.answers {
		if a.UserID == userID && a.DailyReadID == dailyReadID && a.QuestionSeq == questionSeq && a.RetrySeq > max {
			max = a.RetrySeq
		}
	}
	return max, nil
}

func (r *memQuizRepo) GetQuestions(ctx context.Context, dailyReadID string) ([]*quiz.QuizQuestion, error) {
	return r.questions[dailyReadID], nil
}

func (r *memQuizRepo) CreateQuestions(ctx context.Context, questions []*quiz.QuizQuestion) error {
	for _, q := range questions {
		r.questions[q.DailyReadID] = append(r.questions[q.DailyReadID], q)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reading repository
// ─────────────────────────────────────────────────────────────────────────────

type memReadingRepo struct {
	dailyReads map[string]*reading.DailyRead
	reports    map[string]*reading.ReadingReport
	categories map[string]*reading.ReadingCategory // keyed by lowercased name
}

func newMemReadingRepo() *memReadingRepo {
	return &memReadingRepo{
		dailyReads: make(map[string]*reading.DailyRead),
		reports:    make(map[string]*reading.ReadingReport),
		categories: make(map[string]*reading.ReadingCategory),
	}
}

func (r *memReadingRepo) CreateDailyRead(ctx context.Context, d *reading.DailyRead) error {
	r.dailyReads[d.ID] = d
	return nil
}

func (r *memReadingRepo) GetDailyRead(ctx context.Context, id string) (*reading.DailyRead, error) {
	d, ok := r.dailyReads[id]
	if !ok {
		return nil, shared.ErrDailyReadNotFound
	}
	return d, nil
}

func (r *memReadingRepo) CreateReport(ctx context.Context, rep *reading.ReadingReport) error {
	r.reports[rep.ID] = rep
	return nil
}

func (r *memReadingRepo) GetReport(ctx context.Context, id string) (*reading.ReadingReport, error) {
	rep, ok := r.reports[id]
	if !ok {
		return nil, shared.ErrReportNotFound
	}
	return rep, nil
}

func (r *memReadingRepo) CategoryExists(ctx context.Context, name string) (bool, error) {
	_, ok := r.categories[strings.ToLower(name)]
	return ok, nil
}

func (r *memReadingRepo) CreateCategory(ctx context.Context, c *reading.ReadingCategory) error {
	key := strings.ToLower(c.CategoryName)
	if _, ok := r.categories[key]; ok {
		return shared.ErrAlreadyExists
	}
	r.categories[key] = c
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Streak repository
// ─────────────────────────────────────────────────────────────────────────────

type memStreakRepo struct {
	logs map[string][]*streak.StreakLog // per user
}

func newMemStreakRepo() *memStreakRepo {
	return &memStreakRepo{logs: make(map[string][]*streak.StreakLog)}
}

func (r *memStreakRepo) Create(ctx context.Context, log *streak.StreakLog) error {
	for _, existing := range r.logs[log.UserID] {
		if existing.StreakDate.Equal(log.StreakDate) {
			return shared.ErrStreakLogExists
		}
	}
	r.logs[log.UserID] = append(r.logs[log.UserID], log)
	return nil
}

func (r *memStreakRepo) ExistsForDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	for _, l := range r.logs[userID] {
		if l.StreakDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memStreakRepo) GetDatesOnOrBefore(ctx context.Context, userID string, date time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, l := range r.logs[userID] {
		if !l.StreakDate.After(date) {
			out = append(out, l.StreakDate)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out, nil
}

func (r *memStreakRepo) GetDatesInRange(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, l := range r.logs[userID] {
		if !l.StreakDate.Before(from) && !l.StreakDate.After(to) {
			out = append(out, l.StreakDate)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (r *memStreakRepo) GetLogsForDates(ctx context.Context, userID string, dates []time.Time) ([]*streak.StreakLog, error) {
	want := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		want[d] = true
	}
	var out []*streak.StreakLog
	for _, l := range r.logs[userID] {
		if want[l.StreakDate] {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StreakDate.Before(out[j].StreakDate) })
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// XP repository
// ─────────────────────────────────────────────────────────────────────────────

type memXPRepo struct {
	events    map[string][]*xp.UserExpEvent
	snapshots map[string]*xp.UserExpSnapshot
}

func newMemXPRepo() *memXPRepo {
	return &memXPRepo{
		events:    make(map[string][]*xp.UserExpEvent),
		snapshots: make(map[string]*xp.UserExpSnapshot),
	}
}

func (r *memXPRepo) CreateEvent(ctx context.Context, event *xp.UserExpEvent) error {
	for _, existing := range r.events[event.UserID] {
		if existing.EventKind == event.EventKind && existing.RefID == event.RefID {
			return shared.ErrExpEventExists
		}
		if existing.EventSeq == event.EventSeq {
			return shared.ErrConstraintViolation
		}
	}
	r.events[event.UserID] = append(r.events[event.UserID], event)
	return nil
}

func (r *memXPRepo) ExistsForRef(ctx context.Context, userID string, kind xp.EventKind, refID string) (bool, error) {
	for _, e := range r.events[userID] {
		if e.EventKind == kind && e.RefID == refID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memXPRepo) GetMaxEventSeq(ctx context.Context, userID string) (int64, error) {
	var max int64
	for _, e := range r.events[userID] {
		if e.EventSeq > max {
			max = e.EventSeq
		}
	}
	return max, nil
}

func (r *memXPRepo) SumLedger(ctx context.Context, userID string) (int, error) {
	sum := 0
	for _, e := range r.events[userID] {
		sum += e.ExpAmount
	}
	return sum, nil
}

func (r *memXPRepo) GetSnapshot(ctx context.Context, userID string) (*xp.UserExpSnapshot, error) {
	s, ok := r.snapshots[userID]
	if !ok {
		return nil, shared.ErrSnapshotNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memXPRepo) CreateSnapshot(ctx context.Context, snapshot *xp.UserExpSnapshot) error {
	if _, ok := r.snapshots[snapshot.UserID]; ok {
		return shared.ErrAlreadyExists
	}
	copied := *snapshot
	r.snapshots[snapshot.UserID] = &copied
	return nil
}

func (r *memXPRepo) UpdateSnapshot(ctx context.Context, snapshot *xp.UserExpSnapshot) error {
	if _, ok := r.snapshots[snapshot.UserID]; !ok {
		return shared.ErrSnapshotNotFound
	}
	copied := *snapshot
	r.snapshots[snapshot.UserID] = &copied
	return nil
}

func (r *memXPRepo) GetLedgerUserIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.events))
	for id := range r.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Workspace and fixture
// ─────────────────────────────────────────────────────────────────────────────

type memWorkspace struct {
	quizRepo    *memQuizRepo
	readingRepo *memReadingRepo
	streakRepo  *memStreakRepo
	xpRepo      *memXPRepo
	queue       *cascade.Queue
}

func (w *memWorkspace) Quiz() quiz.Repository       { return w.quizRepo }
func (w *memWorkspace) Reading() reading.Repository { return w.readingRepo }
func (w *memWorkspace) Streaks() streak.Repository  { return w.streakRepo }
func (w *memWorkspace) XP() xp.Repository           { return w.xpRepo }

func (w *memWorkspace) Raise(event shared.Event) {
	w.queue.Push(event)
}

func (w *memWorkspace) Collect(carrier shared.EventCarrier) {
	for _, e := range carrier.PullEvents() {
		w.queue.Push(e)
	}
}

// fixture bundles the fakes with a fully registered cascade. The clock is
// frozen so "today" is a known reading day.
type fixture struct {
	t *testing.T

	registry    *cascade.Registry
	quizRepo    *memQuizRepo
	readingRepo *memReadingRepo
	streakRepo  *memStreakRepo
	xpRepo      *memXPRepo
	clock       *timeutil.Clock
	rewards     xp.Rewards
}

// fixedInstant is 18:00 UTC+8 on 2025-05-07, well inside the reading day.
var fixedInstant = time.Date(2025, 5, 7, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, toggles Toggles) *fixture {
	t.Helper()

	f := &fixture{
		t:           t,
		registry:    cascade.NewRegistry(testLogger()),
		quizRepo:    newMemQuizRepo(),
		readingRepo: newMemReadingRepo(),
		streakRepo:  newMemStreakRepo(),
		xpRepo:      newMemXPRepo(),
		clock:       timeutil.NewFixedClock(fixedInstant),
		rewards:     xp.DefaultRewards(),
	}
	RegisterAll(f.registry, f.clock, f.rewards, toggles, testLogger())
	return f
}

func (f *fixture) today() time.Time {
	return f.clock.Today()
}

// run executes fn as one unit of work: writes, then the cascade it raised.
func (f *fixture) run(fn func(ws cascade.Workspace) error) error {
	queue := &cascade.Queue{}
	ws := &memWorkspace{
		quizRepo:    f.quizRepo,
		readingRepo: f.readingRepo,
		streakRepo:  f.streakRepo,
		xpRepo:      f.xpRepo,
		queue:       queue,
	}
	if err := fn(ws); err != nil {
		return err
	}
	return f.registry.Dispatch(context.Background(), ws, queue)
}

// seedQuiz creates a daily read with one question per correct answer given.
func (f *fixture) seedQuiz(dailyReadID string, minimalCorrect int, correctAnswers ...string) {
	f.t.Helper()

	d, err := reading.NewDailyRead(dailyReadID, "title "+dailyReadID, "content", "Fiction", minimalCorrect, f.today())
	require.NoError(f.t, err)
	d.PullEvents() // seeding is not part of the scenario under test
	require.NoError(f.t, f.readingRepo.CreateDailyRead(context.Background(), d))

	questions := make([]*quiz.QuizQuestion, 0, len(correctAnswers))
	for i, correct := range correctAnswers {
		questions = append(questions, &quiz.QuizQuestion{
			DailyReadID:   dailyReadID,
			QuestionSeq:   i + 1,
			Question:      "question",
			CorrectAnswer: correct,
		})
	}
	require.NoError(f.t, f.quizRepo.CreateQuestions(context.Background(), questions))
}

// submitAnswer stores an answer with the next retry sequence and dispatches
// the cascade it raises, as SubmitQuizAnswer does.
func (f *fixture) submitAnswer(userID, dailyReadID string, questionSeq int, text string) {
	f.t.Helper()

	err := f.run(func(ws cascade.Workspace) error {
		ctx := context.Background()
		maxRetry, err := ws.Quiz().GetMaxRetrySeq(ctx, userID, dailyReadID, questionSeq)
		if err != nil {
			return err
		}
		answer, err := quiz.NewQuizAnswer(
			fmt.Sprintf("ans-%s-%s-q%d-r%d", userID, dailyReadID, questionSeq, maxRetry+1),
			userID, dailyReadID, questionSeq, maxRetry+1, text,
		)
		if err != nil {
			return err
		}
		if err := ws.Quiz().CreateAnswer(ctx, answer); err != nil {
			return err
		}
		ws.Collect(answer)
		return nil
	})
	require.NoError(f.t, err)
}

// seedStreakDay inserts a streak log directly, without a cascade.
func (f *fixture) seedStreakDay(userID string, date time.Time) *streak.StreakLog {
	f.t.Helper()

	log := streak.NewStreakLog("log-"+userID+"-"+date.Format("2006-01-02"), userID, date)
	log.PullEvents()
	require.NoError(f.t, f.streakRepo.Create(context.Background(), log))
	return log
}

func (f *fixture) ledger(userID string) []*xp.UserExpEvent {
	return f.xpRepo.events[userID]
}

func (f *fixture) snapshot(userID string) *xp.UserExpSnapshot {
	return f.xpRepo.snapshots[userID]
}

