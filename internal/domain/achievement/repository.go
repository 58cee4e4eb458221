package achievement

import (
	"context"
	"time"
)

// Repository defines the persistence port for achievements and grants.
type Repository interface {
	// ListAll returns every achievement definition ordered by threshold.
	ListAll(ctx context.Context) ([]Achievement, error)

	// GrantsFor returns the learner's grants, newest first, with the
	// achievement definitions resolved.
	GrantsFor(ctx context.Context, learnerID string) ([]Grant, error)

	// HasGrant reports whether the learner holds the achievement.
	HasGrant(ctx context.Context, learnerID, achievementID string) (bool, error)
}

// Evaluator grants newly eligible achievements exactly once.
type Evaluator interface {
	// Evaluate reads the learner's current points, computes the eligible
	// minus already-granted set in a single statement, inserts the missing
	// grants, and returns the achievements actually inserted. Inserts that
	// lose a race to a concurrent evaluation are silently treated as
	// already granted and excluded from the result.
	Evaluate(ctx context.Context, learnerID string, at time.Time) ([]Achievement, error)
}
