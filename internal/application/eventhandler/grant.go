package eventhandler

import (
	"context"

	"github.com/google/uuid"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
)

// grantExp appends one ledger entry for (user, kind, ref) and collects its
// UserExpCreated event. The (user, kind, ref) guard is checked up front and
// again by the storage constraint; either duplicate signal makes the grant a
// no-op rather than an error.
//
// The next sequence is computed as max+1 inside the unit of work. Two units
// of work racing for the same user are serialized by the per-user lock the
// unit of work takes; if that is ever bypassed, the (user_id, event_seq)
// constraint makes the loser fail at commit time.
func grantExp(ctx context.Context, ws cascade.Workspace, userID string, amount int, kind xp.EventKind, refID string) (granted bool, err error) {
	exists, err := ws.XP().ExistsForRef(ctx, userID, kind, refID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	maxSeq, err := ws.XP().GetMaxEventSeq(ctx, userID)
	if err != nil {
		return false, err
	}

	event, err := xp.NewUserExpEvent(uuid.NewString(), userID, maxSeq+1, amount, kind, refID)
	if err != nil {
		return false, err
	}

	if err := ws.XP().CreateEvent(ctx, event); err != nil {
		if shared.IsAlreadyExists(err) {
			return false, nil
		}
		return false, err
	}

	ws.Collect(event)
	return true, nil
}
