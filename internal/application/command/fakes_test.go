package command

// Minimal in-memory unit of work for command tests. The cascade registry is
// empty on purpose: handler behavior is covered by the eventhandler package,
// commands are tested for their own logic.

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memStore struct {
	dailyReads map[string]*reading.DailyRead
	reports    map[string]*reading.ReadingReport
	categories map[string]*reading.ReadingCategory
	questions  map[string][]*quiz.QuizQuestion
	answers    []*quiz.QuizAnswer
	expEvents  map[string][]*xp.UserExpEvent
	snapshots  map[string]*xp.UserExpSnapshot
}

func newMemStore() *memStore {
	return &memStore{
		dailyReads: make(map[string]*reading.DailyRead),
		reports:    make(map[string]*reading.ReadingReport),
		categories: make(map[string]*reading.ReadingCategory),
		questions:  make(map[string][]*quiz.QuizQuestion),
		expEvents:  make(map[string][]*xp.UserExpEvent),
		snapshots:  make(map[string]*xp.UserExpSnapshot),
	}
}

// memUOW runs each unit of work directly against the store. Raised events go
// nowhere; there are no registered handlers to receive them.
type memUOW struct {
	store *memStore
}

func (u *memUOW) Execute(ctx context.Context, userID string, fn func(ctx context.Context, ws cascade.Workspace) error) error {
	return fn(ctx, &memWS{store: u.store})
}

type memWS struct {
	store *memStore
}

func (w *memWS) Quiz() quiz.Repository         { return (*memQuiz)(w) }
func (w *memWS) Reading() reading.Repository   { return (*memReading)(w) }
func (w *memWS) Streaks() streak.Repository    { return nil }
func (w *memWS) XP() xp.Repository             { return (*memXP)(w) }
func (w *memWS) Raise(event shared.Event)      {}
func (w *memWS) Collect(c shared.EventCarrier) { c.PullEvents() }

// ─────────────────────────────────────────────────────────────────────────────

type memQuiz memWS

func (r *memQuiz) CreateAnswer(ctx context.Context, a *quiz.QuizAnswer) error {
	r.store.answers = append(r.store.answers, a)
	return nil
}

func (r *memQuiz) GetAnswers(ctx context.Context, userID, dailyReadID string) ([]*quiz.QuizAnswer, error) {
	var out []*quiz.QuizAnswer
	for _, a := range r.store.answers {
		if a.UserID == userID && a.DailyReadID == dailyReadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memQuiz) GetMaxRetrySeq(ctx context.Context, userID, dailyReadID string, questionSeq int) (int, error) {
	max := 0
	for _, a := range r.store.answers {
		if a.UserID == userID && a.DailyReadID == dailyReadID && a.QuestionSeq == questionSeq && a.RetrySeq > max {
			max = a.RetrySeq
		}
	}
	return max, nil
}

func (r *memQuiz) GetQuestions(ctx context.Context, dailyReadID string) ([]*quiz.QuizQuestion, error) {
	return r.store.questions[dailyReadID], nil
}

func (r *memQuiz) CreateQuestions(ctx context.Context, questions []*quiz.QuizQuestion) error {
	for _, q := range questions {
		r.store.questions[q.DailyReadID] = append(r.store.questions[q.DailyReadID], q)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────

type memReading memWS

func (r *memReading) CreateDailyRead(ctx context.Context, d *reading.DailyRead) error {
	r.store.dailyReads[d.ID] = d
	return nil
}

func (r *memReading) GetDailyRead(ctx context.Context, id string) (*reading.DailyRead, error) {
	d, ok := r.store.dailyReads[id]
	if !ok {
		return nil, shared.ErrDailyReadNotFound
	}
	return d, nil
}

func (r *memReading) CreateReport(ctx context.Context, rep *reading.ReadingReport) error {
	r.store.reports[rep.ID] = rep
	return nil
}

func (r *memReading) GetReport(ctx context.Context, id string) (*reading.ReadingReport, error) {
	rep, ok := r.store.reports[id]
	if !ok {
		return nil, shared.ErrReportNotFound
	}
	return rep, nil
}

func (r *memReading) CategoryExists(ctx context.Context, name string) (bool, error) {
	_, ok := r.store.categories[name]
	return ok, nil
}

func (r *memReading) CreateCategory(ctx context.Context, c *reading.ReadingCategory) error {
	r.store.categories[c.CategoryName] = c
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────

type memXP memWS

func (r *memXP) CreateEvent(ctx context.Context, event *xp.UserExpEvent) error {
	r.store.expEvents[event.UserID] = append(r.store.expEvents[event.UserID], event)
	return nil
}

func (r *memXP) ExistsForRef(ctx context.Context, userID string, kind xp.EventKind, refID string) (bool, error) {
	for _, e := range r.store.expEvents[userID] {
		if e.EventKind == kind && e.RefID == refID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memXP) GetMaxEventSeq(ctx context.Context, userID string) (int64, error) {
	var max int64
	for _, e := range r.store.expEvents[userID] {
		if e.EventSeq > max {
			max = e.EventSeq
		}
	}
	return max, nil
}

func (r *memXP) SumLedger(ctx context.Context, userID string) (int, error) {
	sum := 0
	for _, e := range r.store.expEvents[userID] {
		sum += e.ExpAmount
	}
	return sum, nil
}

func (r *memXP) GetSnapshot(ctx context.Context, userID string) (*xp.UserExpSnapshot, error) {
	s, ok := r.store.snapshots[userID]
	if !ok {
		return nil, shared.ErrSnapshotNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memXP) CreateSnapshot(ctx context.Context, snapshot *xp.UserExpSnapshot) error {
	copied := *snapshot
	r.store.snapshots[snapshot.UserID] = &copied
	return nil
}

func (r *memXP) UpdateSnapshot(ctx context.Context, snapshot *xp.UserExpSnapshot) error {
	copied := *snapshot
	r.store.snapshots[snapshot.UserID] = &copied
	return nil
}

func (r *memXP) GetLedgerUserIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.store.expEvents))
	for id := range r.store.expEvents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
