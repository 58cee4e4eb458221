// Package query contains read operations (CQRS - Queries).
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
// GET LEADERBOARD QUERY
// Ranks the eligible population on read. The ranking itself is pure domain
// code; this handler only wires the population snapshot, the cache-aside and
// the limit together.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultLeaderboardSize is the number of entries returned when the query
// does not ask for a specific limit.
const DefaultLeaderboardSize = 20

// MaxLeaderboardSize bounds how many entries a single query may request.
const MaxLeaderboardSize = 100

// GetLeaderboardQuery contains parameters for fetching the leaderboard.
type GetLeaderboardQuery struct {
	// Limit is the maximum number of entries to return; 0 means the default.
	Limit int

	// Offset skips that many ranked entries before the first returned one.
	Offset int
}

// Validate validates the query.
func (q GetLeaderboardQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("get_leaderboard: limit cannot be negative")
	}
	if q.Limit > MaxLeaderboardSize {
		return fmt.Errorf("get_leaderboard: limit cannot exceed %d", MaxLeaderboardSize)
	}
	if q.Offset < 0 {
		return errors.New("get_leaderboard: offset cannot be negative")
	}
	return nil
}

// GetLeaderboardResult contains the ranked entries.
type GetLeaderboardResult struct {
	// Entries are the ranked rows, best first.
	Entries []*leaderboard.Entry

	// Total is the size of the whole eligible population.
	Total int

	// FromCache reports whether the result was served from cache.
	FromCache bool

	// GeneratedAt is when the snapshot was taken.
	GeneratedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardHandler handles the GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	population leaderboard.PopulationSource
	cache      leaderboard.Cache
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler.
// The cache may be nil; every read then hits the population source.
func NewGetLeaderboardHandler(
	population leaderboard.PopulationSource,
	cache leaderboard.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *GetLeaderboardHandler {
	if log == nil {
		log = logger.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &GetLeaderboardHandler{
		population: population,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     log.With(logger.Component("get_leaderboard")),
	}
}

// Handle executes the get leaderboard query.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultLeaderboardSize
	}

	// Cache errors degrade to a database read, never to a failed query.
	// Only the first page is cached; offset reads rank fresh.
	if h.cache != nil && q.Offset == 0 {
		cached, total, err := h.cache.GetTop(ctx, limit)
		if err != nil {
			h.logger.Warn("leaderboard cache read failed", logger.Err(err))
		} else if cached != nil {
			return &GetLeaderboardResult{
				Entries:     cached,
				Total:       total,
				FromCache:   true,
				GeneratedAt: time.Now().UTC(),
			}, nil
		}
	}

	population, err := h.population.RankablePopulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: %w", err)
	}

	ranking := leaderboard.FromPopulation(population)

	if h.cache != nil {
		if err := h.cache.SetTop(ctx, ranking.All(), h.cacheTTL); err != nil {
			h.logger.Warn("leaderboard cache write failed", logger.Err(err))
		}
	}

	return &GetLeaderboardResult{
		Entries:     ranking.Slice(q.Offset, q.Offset+limit),
		Total:       ranking.Count(),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
