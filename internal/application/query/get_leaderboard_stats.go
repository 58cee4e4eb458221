package query

import (
	"context"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/leaderboard"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD STATS QUERY
// Population-wide aggregates for the admin report: how many learners are
// ranked and where the points mass sits.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardStatsQuery requests leaderboard aggregates. It takes no
// parameters; the population is always aggregated whole.
type GetLeaderboardStatsQuery struct{}

// GetLeaderboardStatsResult contains the aggregates.
type GetLeaderboardStatsResult struct {
	// Total is the size of the ranked population.
	Total int

	// AveragePoints is the mean points across the population.
	AveragePoints learner.Points

	// MedianPoints is the median points across the population.
	MedianPoints learner.Points

	// TopPoints is the points of the first-ranked learner, 0 when the
	// population is empty.
	TopPoints learner.Points

	// GeneratedAt is when the snapshot was taken.
	GeneratedAt time.Time
}

// GetLeaderboardStatsHandler handles the GetLeaderboardStatsQuery.
type GetLeaderboardStatsHandler struct {
	population leaderboard.PopulationSource
	logger     *logger.Logger
}

// NewGetLeaderboardStatsHandler creates a new GetLeaderboardStatsHandler.
func NewGetLeaderboardStatsHandler(population leaderboard.PopulationSource, log *logger.Logger) *GetLeaderboardStatsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetLeaderboardStatsHandler{
		population: population,
		logger:     log.With(logger.Component("get_leaderboard_stats")),
	}
}

// Handle executes the get leaderboard stats query.
func (h *GetLeaderboardStatsHandler) Handle(ctx context.Context, _ GetLeaderboardStatsQuery) (*GetLeaderboardStatsResult, error) {
	population, err := h.population.RankablePopulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard_stats: %w", err)
	}

	ranking := leaderboard.FromPopulation(population)

	result := &GetLeaderboardStatsResult{
		Total:         ranking.Count(),
		AveragePoints: ranking.AveragePoints(),
		MedianPoints:  ranking.MedianPoints(),
		GeneratedAt:   time.Now().UTC(),
	}
	if top := ranking.Top(1); len(top) > 0 {
		result.TopPoints = top[0].Points
	}
	return result, nil
}
