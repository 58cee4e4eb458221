// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/learnhub/learnhub-backend/internal/domain/achievement"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
)

// TxPorts bundles the repositories bound to one open transaction. Everything
// obtained through it reads and writes the same snapshot; the transaction
// commits when the UnitOfWork function returns nil.
type TxPorts interface {
	// Catalog returns the course/lesson reference data port.
	Catalog() progress.Catalog

	// Progress returns the completion record port.
	Progress() progress.Store

	// Learners returns the learner persistence port.
	Learners() learner.Repository

	// Accumulator returns the atomic reward port.
	Accumulator() learner.ScoreAccumulator

	// Evaluator returns the achievement grant port.
	Evaluator() achievement.Evaluator
}

// UnitOfWork runs a function with repositories bound to a single transaction.
// A non-nil error from fn rolls everything back - the completion flag, the
// reward and any achievement grants stand or fall together.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ports TxPorts) error) error
}
