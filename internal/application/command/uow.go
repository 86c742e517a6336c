package command

import (
	"context"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
)

// UnitOfWorkFactory opens a transactional workspace, runs the given function
// in it, dispatches the event cascade, and commits. Work for one user is
// serialized; implementations retry once when a commit-time uniqueness race
// is lost. Implemented by infrastructure/persistence/postgres.
type UnitOfWorkFactory interface {
	Execute(ctx context.Context, userID string, fn func(ctx context.Context, ws cascade.Workspace) error) error
}
