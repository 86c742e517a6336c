package eventhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/streak"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

func TestQuizPass_CreatesStreakLogAndGrantsExp(t *testing.T) {
	f := newFixture(t, AllEnabled())
	f.seedQuiz("dr1", 2, "alpha", "beta")

	f.submitAnswer("user1", "dr1", 1, "alpha")

	// One of two correct: not passed yet, nothing derived.
	assert.Empty(t, f.ledger("user1"))
	exists, err := f.streakRepo.ExistsForDate(context.Background(), "user1", f.today())
	require.NoError(t, err)
	assert.False(t, exists)

	f.submitAnswer("user1", "dr1", 2, "beta")

	exists, err = f.streakRepo.ExistsForDate(context.Background(), "user1", f.today())
	require.NoError(t, err)
	assert.True(t, exists)

	ledger := f.ledger("user1")
	require.Len(t, ledger, 1)
	assert.Equal(t, xp.KindDailyReadsExp, ledger[0].EventKind)
	assert.Equal(t, "dr1", ledger[0].RefID)
	assert.Equal(t, f.rewards.QuizPassReward, ledger[0].ExpAmount)
	assert.Equal(t, int64(1), ledger[0].EventSeq)

	snapshot := f.snapshot("user1")
	require.NotNil(t, snapshot)
	assert.Equal(t, f.rewards.QuizPassReward, snapshot.TotalExp)
	assert.Equal(t, int64(1), snapshot.LastSeq)
}

func TestQuizPass_CaseInsensitive(t *testing.T) {
	f := newFixture(t, AllEnabled())
	f.seedQuiz("dr1", 1, "Paris")

	f.submitAnswer("user1", "dr1", 1, "pArIs")

	require.Len(t, f.ledger("user1"), 1)
}

func TestQuizFail_DerivesNothing(t *testing.T) {
	f := newFixture(t, AllEnabled())
	f.seedQuiz("dr1", 2, "alpha", "beta")

	f.submitAnswer("user1", "dr1", 1, "wrong")
	f.submitAnswer("user1", "dr1", 2, "beta")

	assert.Empty(t, f.ledger("user1"))
	assert.Nil(t, f.snapshot("user1"))

	exists, err := f.streakRepo.ExistsForDate(context.Background(), "user1", f.today())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestQuizPass_AfterRetry(t *testing.T) {
	f := newFixture(t, AllEnabled())
	f.seedQuiz("dr1", 1, "alpha")

	f.submitAnswer("user1", "dr1", 1, "wrong")
	assert.Empty(t, f.ledger("user1"))

	// The retry becomes the current answer and completes the pass.
	f.submitAnswer("user1", "dr1", 1, "alpha")

	ledger := f.ledger("user1")
	require.Len(t, ledger, 1)
	assert.Equal(t, xp.KindDailyReadsExp, ledger[0].EventKind)
}

func TestQuizPass_RepeatedSubmissionsStayIdempotent(t *testing.T) {
	f := newFixture(t, AllEnabled())
	f.seedQuiz("dr1", 1, "alpha")

	f.submitAnswer("user1", "dr1", 1, "alpha")
	// Answering again keeps the quiz passed and re-runs the cascade; both
	// the streak log and the grant must not double.
	f.submitAnswer("user1", "dr1", 1, "alpha")
	f.submitAnswer("user1", "dr1", 1, "alpha")

	require.Len(t, f.ledger("user1"), 1)
	require.Len(t, f.streakRepo.logs["user1"], 1)

	snapshot := f.snapshot("user1")
	require.NotNil(t, snapshot)
	assert.Equal(t, f.rewards.QuizPassReward, snapshot.TotalExp)
}

func TestTwoPassedQuizzes_OneStreakDayTwoGrants(t *testing.T) {
	f := newFixture(t, AllEnabled())
	f.seedQuiz("dr1", 1, "alpha")
	f.seedQuiz("dr2", 1, "beta")

	f.submitAnswer("user1", "dr1", 1, "alpha")
	f.submitAnswer("user1", "dr2", 1, "beta")

	// The day is credited once; the quiz reward is per daily read.
	require.Len(t, f.streakRepo.logs["user1"], 1)

	ledger := f.ledger("user1")
	require.Len(t, ledger, 2)
	assert.Equal(t, "dr1", ledger[0].RefID)
	assert.Equal(t, "dr2", ledger[1].RefID)
	assert.Equal(t, int64(1), ledger[0].EventSeq)
	assert.Equal(t, int64(2), ledger[1].EventSeq)

	snapshot := f.snapshot("user1")
	require.NotNil(t, snapshot)
	assert.Equal(t, 2*f.rewards.QuizPassReward, snapshot.TotalExp)
	assert.Equal(t, int64(2), snapshot.LastSeq)
}

func TestStreakBonus_GrantedOnCompletedWindow(t *testing.T) {
	f := newFixture(t, AllEnabled())
	f.seedQuiz("dr1", 1, "alpha")

	// Six consecutive days already logged; today's pass completes the run.
	var earliestID string
	for i := 6; i >= 1; i-- {
		log := f.seedStreakDay("user1", f.today().AddDate(0, 0, -i))
		if i == 6 {
			earliestID = log.ID
		}
	}

	f.submitAnswer("user1", "dr1", 1, "alpha")

	ledger := f.ledger("user1")
	require.Len(t, ledger, 2)

	// Quiz exp first, then the bonus raised by the streak log.
	assert.Equal(t, xp.KindDailyReadsExp, ledger[0].EventKind)
	assert.Equal(t, xp.KindStreakExp, ledger[1].EventKind)
	assert.Equal(t, f.rewards.StreakBonus, ledger[1].ExpAmount)
	assert.Equal(t, earliestID, ledger[1].RefID)
	assert.Equal(t, int64(2), ledger[1].EventSeq)

	snapshot := f.snapshot("user1")
	require.NotNil(t, snapshot)
	assert.Equal(t, f.rewards.QuizPassReward+f.rewards.StreakBonus, snapshot.TotalExp)
	assert.Equal(t, int64(2), snapshot.LastSeq)
	assert.Equal(t, int64(2), snapshot.SnapshotSeq)
}

func TestStreakBonus_NotGrantedOnGappedWindow(t *testing.T) {
	f := newFixture(t, AllEnabled())
	f.seedQuiz("dr1", 1, "alpha")

	// Days -6..-1 except -3: the window has a hole.
	for i := 6; i >= 1; i-- {
		if i == 3 {
			continue
		}
		f.seedStreakDay("user1", f.today().AddDate(0, 0, -i))
	}

	f.submitAnswer("user1", "dr1", 1, "alpha")

	ledger := f.ledger("user1")
	require.Len(t, ledger, 1)
	assert.Equal(t, xp.KindDailyReadsExp, ledger[0].EventKind)
}

func TestStreakBonus_RollingWindowGrantsAgain(t *testing.T) {
	f := newFixture(t, AllEnabled())
	f.seedQuiz("dr1", 1, "alpha")

	// Seven days already logged and the bonus for the window starting at
	// day -7 already granted. Today's log opens a window starting at day -6,
	// which is a different earliest log, so a second bonus is due.
	var logs []string
	for i := 7; i >= 1; i-- {
		log := f.seedStreakDay("user1", f.today().AddDate(0, 0, -i))
		logs = append(logs, log.ID)
	}
	priorWindowStart := logs[0] // day -7
	newWindowStart := logs[1]   // day -6

	_, err := xpSeedGrant(f, "user1", 1, f.rewards.StreakBonus, xp.KindStreakExp, priorWindowStart)
	require.NoError(t, err)

	f.submitAnswer("user1", "dr1", 1, "alpha")

	var bonuses []*xp.UserExpEvent
	for _, e := range f.ledger("user1") {
		if e.EventKind == xp.KindStreakExp {
			bonuses = append(bonuses, e)
		}
	}
	require.Len(t, bonuses, 2)
	assert.Equal(t, priorWindowStart, bonuses[0].RefID)
	assert.Equal(t, newWindowStart, bonuses[1].RefID)
}

func TestStreakBonus_SameWindowGrantsOnce(t *testing.T) {
	f := newFixture(t, AllEnabled())

	// Replay the StreakLogCreated event for an already-credited window.
	var earliest string
	for i := 6; i >= 0; i-- {
		log := f.seedStreakDay("user1", f.today().AddDate(0, 0, -i))
		if i == 6 {
			earliest = log.ID
		}
	}
	todayLog := f.streakRepo.logs["user1"][6]

	dispatch := func() {
		err := f.run(func(ws cascade.Workspace) error {
			ws.Raise(streak.NewStreakLogCreatedEvent(todayLog))
			return nil
		})
		require.NoError(t, err)
	}

	dispatch()
	dispatch()

	ledger := f.ledger("user1")
	require.Len(t, ledger, 1)
	assert.Equal(t, xp.KindStreakExp, ledger[0].EventKind)
	assert.Equal(t, earliest, ledger[0].RefID)
}

func TestReadingReport_GrantsPageScaledExp(t *testing.T) {
	f := newFixture(t, AllEnabled())

	report := submitReport(t, f, "rep1", "user1", 12)

	ledger := f.ledger("user1")
	require.Len(t, ledger, 1)
	assert.Equal(t, xp.KindReadingExp, ledger[0].EventKind)
	assert.Equal(t, report.ID, ledger[0].RefID)
	assert.Equal(t, 12*f.rewards.ReadingPerPage, ledger[0].ExpAmount)

	snapshot := f.snapshot("user1")
	require.NotNil(t, snapshot)
	assert.Equal(t, 12*f.rewards.ReadingPerPage, snapshot.TotalExp)
}

func TestReadingReport_ReplayedEventGrantsOnce(t *testing.T) {
	f := newFixture(t, AllEnabled())

	report := submitReport(t, f, "rep1", "user1", 5)

	// Replay the committed event, as a duplicate delivery would.
	err := f.run(func(ws cascade.Workspace) error {
		ws.Raise(reading.NewReadingReportCreatedEvent(report))
		return nil
	})
	require.NoError(t, err)

	require.Len(t, f.ledger("user1"), 1)
}

func TestCategory_CreatedOnceCaseInsensitive(t *testing.T) {
	f := newFixture(t, AllEnabled())

	createDailyRead(t, f, "dr1", "Science")
	createDailyRead(t, f, "dr2", "science")
	createDailyRead(t, f, "dr3", "History")

	assert.Len(t, f.readingRepo.categories, 2)

	exists, err := f.readingRepo.CategoryExists(context.Background(), "SCIENCE")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCategory_EmptyNameSkipped(t *testing.T) {
	f := newFixture(t, AllEnabled())

	createDailyRead(t, f, "dr1", "   ")

	assert.Empty(t, f.readingRepo.categories)
}

func TestToggles_DisabledBranchesAreNotRegistered(t *testing.T) {
	toggles := AllEnabled()
	toggles.QuizExp = false
	toggles.StreakBonus = false

	f := newFixture(t, toggles)
	f.seedQuiz("dr1", 1, "alpha")
	for i := 6; i >= 1; i-- {
		f.seedStreakDay("user1", f.today().AddDate(0, 0, -i))
	}

	f.submitAnswer("user1", "dr1", 1, "alpha")

	// Streak day is still credited, but no exp flows.
	require.Len(t, f.streakRepo.logs["user1"], 7)
	assert.Empty(t, f.ledger("user1"))
	assert.Nil(t, f.snapshot("user1"))
}

func TestToggles_StreaksOffStopsTheChain(t *testing.T) {
	toggles := AllEnabled()
	toggles.Streaks = false

	f := newFixture(t, toggles)
	f.seedQuiz("dr1", 1, "alpha")

	f.submitAnswer("user1", "dr1", 1, "alpha")

	assert.Empty(t, f.streakRepo.logs["user1"])

	// The quiz reward is independent of the streak branch.
	ledger := f.ledger("user1")
	require.Len(t, ledger, 1)
	assert.Equal(t, xp.KindDailyReadsExp, ledger[0].EventKind)
}

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func submitReport(t *testing.T, f *fixture, id, userID string, pages int) *reading.ReadingReport {
	t.Helper()

	var report *reading.ReadingReport
	err := f.run(func(ws cascade.Workspace) error {
		var err error
		report, err = reading.NewReadingReport(id, userID, "resource1", pages)
		if err != nil {
			return err
		}
		if err := ws.Reading().CreateReport(context.Background(), report); err != nil {
			return err
		}
		ws.Collect(report)
		return nil
	})
	require.NoError(t, err)
	return report
}

func createDailyRead(t *testing.T, f *fixture, id, category string) {
	t.Helper()

	err := f.run(func(ws cascade.Workspace) error {
		d, err := reading.NewDailyRead(id, "title "+id, "content", category, 1, f.today())
		if err != nil {
			return err
		}
		if err := ws.Reading().CreateDailyRead(context.Background(), d); err != nil {
			return err
		}
		ws.Collect(d)
		return nil
	})
	require.NoError(t, err)
}

func xpSeedGrant(f *fixture, userID string, seq int64, amount int, kind xp.EventKind, refID string) (*xp.UserExpEvent, error) {
	event, err := xp.NewUserExpEvent("seed-"+refID, userID, seq, amount, kind, refID)
	if err != nil {
		return nil, err
	}
	event.PullEvents()
	if err := f.xpRepo.CreateEvent(context.Background(), event); err != nil {
		return nil, err
	}
	return event, nil
}
