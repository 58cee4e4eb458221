package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/leaderboard"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// KEYS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// keyTop holds the serialized ranked entries of the current leaderboard.
	keyTop = PrefixLeaderboard + "top"

	// keyRankPrefix + learnerID holds one learner's cached standing.
	keyRankPrefix = PrefixLeaderboard + "rank:"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERIALIZED FORMS
// ══════════════════════════════════════════════════════════════════════════════

type cachedEntry struct {
	Rank        int       `json:"rank"`
	LearnerID   string    `json:"learner_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Points      int       `json:"points"`
	Level       int       `json:"level"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type cachedStanding struct {
	Rank   int `json:"rank"`
	Points int `json:"points"`
	Of     int `json:"of"`
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardCache implements leaderboard.Cache on Redis. The cached top and
// the per-learner standings share one lifetime: both are written by SetTop and
// both are dropped by Invalidate, so a reader never mixes entries from two
// different ranking snapshots.
type LeaderboardCache struct {
	cache *Cache
}

// NewLeaderboardCache creates a new LeaderboardCache.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

// GetTop returns the cached top-n entries, or nil on miss. A snapshot holding
// fewer entries than requested is only a hit when it covers the whole
// population, which the stored standings count tells us.
func (lc *LeaderboardCache) GetTop(ctx context.Context, n int) ([]*leaderboard.Entry, int, error) {
	var stored struct {
		Entries []cachedEntry `json:"entries"`
		Total   int           `json:"total"`
	}

	err := lc.cache.Get(ctx, keyTop, &stored)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("leaderboard cache: get top: %w", err)
	}

	if len(stored.Entries) < n && len(stored.Entries) < stored.Total {
		return nil, 0, nil
	}

	limit := n
	if limit > len(stored.Entries) {
		limit = len(stored.Entries)
	}

	entries := make([]*leaderboard.Entry, 0, limit)
	for _, ce := range stored.Entries[:limit] {
		entries = append(entries, &leaderboard.Entry{
			Rank:        leaderboard.Rank(ce.Rank),
			LearnerID:   ce.LearnerID,
			Username:    ce.Username,
			DisplayName: ce.DisplayName,
			Points:      learner.Points(ce.Points),
			Level:       learner.Level(ce.Level),
			UpdatedAt:   ce.UpdatedAt,
		})
	}

	return entries, stored.Total, nil
}

// SetTop stores the ranked entries and per-learner standings with a TTL.
func (lc *LeaderboardCache) SetTop(ctx context.Context, entries []*leaderboard.Entry, ttl time.Duration) error {
	stored := struct {
		Entries []cachedEntry `json:"entries"`
		Total   int           `json:"total"`
	}{
		Entries: make([]cachedEntry, 0, len(entries)),
		Total:   len(entries),
	}

	for _, e := range entries {
		stored.Entries = append(stored.Entries, cachedEntry{
			Rank:        int(e.Rank),
			LearnerID:   e.LearnerID,
			Username:    e.Username,
			DisplayName: e.DisplayName,
			Points:      int(e.Points),
			Level:       int(e.Level),
			UpdatedAt:   e.UpdatedAt,
		})
	}

	if err := lc.cache.Set(ctx, keyTop, stored, ttl); err != nil {
		return fmt.Errorf("leaderboard cache: set top: %w", err)
	}

	// Standings piggyback on the same snapshot via a pipeline.
	err := lc.cache.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			standing := cachedStanding{Rank: int(e.Rank), Points: int(e.Points), Of: len(entries)}
			data, err := json.Marshal(standing)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
			}
			pipe.Set(ctx, keyRankPrefix+e.LearnerID, data, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("leaderboard cache: set standings: %w", err)
	}

	return nil
}

// GetRank returns the cached standing for a learner, or nil on miss.
func (lc *LeaderboardCache) GetRank(ctx context.Context, learnerID string) (*leaderboard.Standing, error) {
	var cs cachedStanding
	if err := lc.cache.Get(ctx, keyRankPrefix+learnerID, &cs); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("leaderboard cache: get rank: %w", err)
	}

	return &leaderboard.Standing{
		Rank:   leaderboard.Rank(cs.Rank),
		Points: learner.Points(cs.Points),
		Of:     cs.Of,
	}, nil
}

// Invalidate drops all cached leaderboard state.
func (lc *LeaderboardCache) Invalidate(ctx context.Context) error {
	if err := lc.cache.DeleteByPattern(ctx, PrefixLeaderboard+"*"); err != nil {
		return fmt.Errorf("leaderboard cache: invalidate: %w", err)
	}
	return nil
}
