package eventhandler

import (
	"log/slog"

	"github.com/readhabit/readhabit-hub/internal/domain/cascade"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/internal/domain/xp"
	"github.com/readhabit/readhabit-hub/pkg/timeutil"
)

// Toggles enables or disables whole cascade branches. A disabled branch is
// simply never registered, so the rest of the cascade is unaffected.
type Toggles struct {
	Streaks     bool
	StreakBonus bool
	ReadingExp  bool
	QuizExp     bool
	Categories  bool
}

// AllEnabled returns toggles with every branch on.
func AllEnabled() Toggles {
	return Toggles{
		Streaks:     true,
		StreakBonus: true,
		ReadingExp:  true,
		QuizExp:     true,
		Categories:  true,
	}
}

// RegisterAll wires every cascade handler into the registry.
//
// Registration order matters for QuizAnswered: the streak handler runs first
// so that, within one unit of work, a passing answer produces the streak log
// (and any streak bonus it cascades into) before the quiz-pass exp grant.
// Both outcomes land in the same ledger either way, but keeping the order
// fixed keeps event sequences deterministic for a given input.
//
// The snapshot handler must always be registered when any exp branch is on:
// a ledger entry without its snapshot fold violates the snapshot's
// always-current contract.
func RegisterAll(registry *cascade.Registry, clock *timeutil.Clock, rewards xp.Rewards, toggles Toggles, logger *slog.Logger) {
	if toggles.Streaks {
		registry.Register(shared.EventQuizAnswered, NewStreakFromQuizHandler(clock, logger))
	}
	if toggles.QuizExp {
		registry.Register(shared.EventQuizAnswered, NewDailyReadsExpHandler(rewards, logger))
	}
	if toggles.ReadingExp {
		registry.Register(shared.EventReadingReportCreated, NewReadingExpHandler(rewards, logger))
	}
	if toggles.StreakBonus {
		registry.Register(shared.EventStreakLogCreated, NewStreakExpHandler(rewards, logger))
	}
	if toggles.Categories {
		registry.Register(shared.EventDailyReadCreated, NewCategoryHandler(logger))
	}

	if toggles.QuizExp || toggles.ReadingExp || toggles.StreakBonus {
		registry.Register(shared.EventUserExpCreated, NewSnapshotHandler(logger))
	}
}
