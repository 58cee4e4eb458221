package leaderboard

import (
	"context"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
)

// PopulationSource supplies the eligible-population snapshot the ranking is
// computed from. The eligibility predicate (active accounts with the student
// role) is applied by the implementation; the ranking ranks whatever
// population it is handed. Reads are read-committed: an in-flight completion
// may surface as either its pre- or post-update points.
type PopulationSource interface {
	// RankablePopulation returns the current snapshot of eligible learners.
	RankablePopulation(ctx context.Context) ([]*learner.Learner, error)
}

// Cache is an optional hot cache in front of the ranked read path. A miss or
// a cache failure is never an error; readers fall back to the population
// snapshot.
type Cache interface {
	// GetTop returns the cached top-n entries and the size of the population
	// the snapshot was taken from, or nil entries on miss.
	GetTop(ctx context.Context, n int) ([]*Entry, int, error)

	// SetTop stores the ranked top entries with a TTL.
	SetTop(ctx context.Context, entries []*Entry, ttl time.Duration) error

	// GetRank returns the cached rank and points for a learner, or nil on miss.
	GetRank(ctx context.Context, learnerID string) (*Standing, error)

	// Invalidate drops all cached leaderboard state. Called after every
	// committed completion so readers never see a stale top for long.
	Invalidate(ctx context.Context) error
}
