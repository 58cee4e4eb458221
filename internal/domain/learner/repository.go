package learner

import (
	"context"
)

// Repository defines the persistence port for learners. Implementations live
// in the infrastructure layer; the domain only sees this capability set.
type Repository interface {
	// Create inserts a new learner. Returns ErrLearnerAlreadyExists when the
	// ID or username is taken.
	Create(ctx context.Context, l *Learner) error

	// GetByID returns a learner by internal ID, or ErrLearnerNotFound.
	GetByID(ctx context.Context, id string) (*Learner, error)

	// GetByUsername returns a learner by username, or ErrLearnerNotFound.
	GetByUsername(ctx context.Context, username string) (*Learner, error)

	// Exists checks whether a learner with the ID exists.
	Exists(ctx context.Context, id string) (bool, error)
}

// ScoreAccumulator applies reward deltas. The increment, the experience
// update and the level recomputation must happen as one atomic unit against
// the learner's row, so concurrent rewards for the same learner never lose
// updates.
type ScoreAccumulator interface {
	// ApplyReward atomically adds delta to points and experience, recomputes
	// the level from the post-update experience, and returns the new totals.
	ApplyReward(ctx context.Context, learnerID string, delta Points) (*NewTotals, error)
}
