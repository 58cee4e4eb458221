package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/leaderboard"
	"github.com/learnhub/learnhub-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STANDING QUERY
// One learner's rank within the current leaderboard.
// ══════════════════════════════════════════════════════════════════════════════

// GetStandingQuery contains parameters for fetching a learner's standing.
type GetStandingQuery struct {
	// LearnerID is the learner whose standing is requested.
	LearnerID string
}

// Validate validates the query.
func (q GetStandingQuery) Validate() error {
	if q.LearnerID == "" {
		return errors.New("get_standing: learner_id is required")
	}
	return nil
}

// GetStandingResult contains the learner's standing.
type GetStandingResult struct {
	// Standing is the learner's rank, points and population size.
	Standing *leaderboard.Standing

	// FromCache reports whether the result was served from cache.
	FromCache bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetStandingHandler handles the GetStandingQuery.
type GetStandingHandler struct {
	population leaderboard.PopulationSource
	cache      leaderboard.Cache
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// NewGetStandingHandler creates a new GetStandingHandler.
func NewGetStandingHandler(
	population leaderboard.PopulationSource,
	cache leaderboard.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *GetStandingHandler {
	if log == nil {
		log = logger.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &GetStandingHandler{
		population: population,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     log.With(logger.Component("get_standing")),
	}
}

// Handle executes the get standing query. Returns
// leaderboard.ErrLearnerNotRanked for learners outside the eligible
// population (inactive accounts, non-students, unknown IDs).
func (h *GetStandingHandler) Handle(ctx context.Context, q GetStandingQuery) (*GetStandingResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		standing, err := h.cache.GetRank(ctx, q.LearnerID)
		if err != nil {
			h.logger.Warn("standing cache read failed", logger.Err(err))
		} else if standing != nil {
			return &GetStandingResult{Standing: standing, FromCache: true}, nil
		}
	}

	population, err := h.population.RankablePopulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_standing: %w", err)
	}

	ranking := leaderboard.FromPopulation(population)

	if h.cache != nil {
		if err := h.cache.SetTop(ctx, ranking.All(), h.cacheTTL); err != nil {
			h.logger.Warn("leaderboard cache write failed", logger.Err(err))
		}
	}

	standing, err := ranking.StandingOf(q.LearnerID)
	if err != nil {
		return nil, err
	}

	return &GetStandingResult{Standing: standing}, nil
}
