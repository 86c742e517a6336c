package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

func seedLedger(t *testing.T, store *memStore, userID string, amounts ...int) {
	t.Helper()
	for i, amount := range amounts {
		event, err := xp.NewUserExpEvent(
			userID+"-e"+string(rune('0'+i)), userID, int64(i+1), amount, xp.KindReadingExp, userID+"-ref"+string(rune('0'+i)),
		)
		require.NoError(t, err)
		event.PullEvents()
		store.expEvents[userID] = append(store.expEvents[userID], event)
	}
}

func TestReconcileSnapshots_CleanSnapshotsUntouched(t *testing.T) {
	store := newMemStore()
	seedLedger(t, store, "user1", 100, 50)
	store.snapshots["user1"] = &xp.UserExpSnapshot{
		UserID: "user1", SnapshotSeq: 2, LastSeq: 2, TotalExp: 150,
	}

	h := NewReconcileSnapshotsHandler(&memUOW{store: store}, (*memXP)(&memWS{store: store}), testLogger())

	result, err := h.Handle(context.Background(), ReconcileSnapshotsCommand{Repair: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.UsersChecked)
	assert.Equal(t, 0, result.Diverged)
	assert.Equal(t, 0, result.Repaired)
	assert.Equal(t, int64(2), store.snapshots["user1"].SnapshotSeq)
}

func TestReconcileSnapshots_RepairsDivergedTotal(t *testing.T) {
	store := newMemStore()
	seedLedger(t, store, "user1", 100, 50)
	store.snapshots["user1"] = &xp.UserExpSnapshot{
		UserID: "user1", SnapshotSeq: 2, LastSeq: 2, TotalExp: 120, // out-of-band corruption
	}

	h := NewReconcileSnapshotsHandler(&memUOW{store: store}, (*memXP)(&memWS{store: store}), testLogger())

	result, err := h.Handle(context.Background(), ReconcileSnapshotsCommand{Repair: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Diverged)
	assert.Equal(t, 1, result.Repaired)

	repaired := store.snapshots["user1"]
	assert.Equal(t, 150, repaired.TotalExp)
	assert.Equal(t, int64(2), repaired.LastSeq)
	assert.Equal(t, int64(3), repaired.SnapshotSeq) // repair is itself a fold
	assert.False(t, repaired.UpdatedAt.IsZero())
}

func TestReconcileSnapshots_RebuildsMissingSnapshot(t *testing.T) {
	store := newMemStore()
	seedLedger(t, store, "user1", 30, 20, 10)

	h := NewReconcileSnapshotsHandler(&memUOW{store: store}, (*memXP)(&memWS{store: store}), testLogger())

	result, err := h.Handle(context.Background(), ReconcileSnapshotsCommand{Repair: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Diverged)
	assert.Equal(t, 1, result.Repaired)

	rebuilt := store.snapshots["user1"]
	require.NotNil(t, rebuilt)
	assert.Equal(t, 60, rebuilt.TotalExp)
	assert.Equal(t, int64(3), rebuilt.LastSeq)
	assert.Equal(t, int64(1), rebuilt.SnapshotSeq)
}

func TestReconcileSnapshots_ReportOnlyMode(t *testing.T) {
	store := newMemStore()
	seedLedger(t, store, "user1", 100)
	store.snapshots["user1"] = &xp.UserExpSnapshot{
		UserID: "user1", SnapshotSeq: 1, LastSeq: 1, TotalExp: 999,
	}

	h := NewReconcileSnapshotsHandler(&memUOW{store: store}, (*memXP)(&memWS{store: store}), testLogger())

	result, err := h.Handle(context.Background(), ReconcileSnapshotsCommand{Repair: false})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Diverged)
	assert.Equal(t, 0, result.Repaired)
	assert.Equal(t, 999, store.snapshots["user1"].TotalExp) // untouched
}

func TestReconcileSnapshots_ChecksEveryLedgerUser(t *testing.T) {
	store := newMemStore()
	seedLedger(t, store, "user1", 10)
	seedLedger(t, store, "user2", 20)
	seedLedger(t, store, "user3", 30)
	store.snapshots["user1"] = &xp.UserExpSnapshot{UserID: "user1", SnapshotSeq: 1, LastSeq: 1, TotalExp: 10}

	h := NewReconcileSnapshotsHandler(&memUOW{store: store}, (*memXP)(&memWS{store: store}), testLogger())

	result, err := h.Handle(context.Background(), ReconcileSnapshotsCommand{Repair: true})
	require.NoError(t, err)

	assert.Equal(t, 3, result.UsersChecked)
	assert.Equal(t, 2, result.Diverged) // the two users without snapshots
	assert.Equal(t, 2, result.Repaired)
}
