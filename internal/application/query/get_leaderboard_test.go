package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub-backend/internal/domain/leaderboard"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakePopulation struct {
	learners []*learner.Learner
	err      error
	calls    int
}

func (f *fakePopulation) RankablePopulation(_ context.Context) ([]*learner.Learner, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.learners, nil
}

// memoryCache is a map-backed leaderboard.Cache with fault injection.
type memoryCache struct {
	top      []*leaderboard.Entry
	topTotal int
	ranks    map[string]*leaderboard.Standing
	failGet  error
	failSet  error
	sets     int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{ranks: make(map[string]*leaderboard.Standing)}
}

func (c *memoryCache) GetTop(_ context.Context, n int) ([]*leaderboard.Entry, int, error) {
	if c.failGet != nil {
		return nil, 0, c.failGet
	}
	if c.top == nil {
		return nil, 0, nil
	}
	if n > len(c.top) {
		n = len(c.top)
	}
	return c.top[:n], c.topTotal, nil
}

func (c *memoryCache) SetTop(_ context.Context, entries []*leaderboard.Entry, _ time.Duration) error {
	if c.failSet != nil {
		return c.failSet
	}
	c.sets++
	c.top = entries
	c.topTotal = len(entries)
	for _, e := range entries {
		c.ranks[e.LearnerID] = &leaderboard.Standing{Rank: e.Rank, Points: e.Points, Of: len(entries)}
	}
	return nil
}

func (c *memoryCache) GetRank(_ context.Context, learnerID string) (*leaderboard.Standing, error) {
	if c.failGet != nil {
		return nil, c.failGet
	}
	return c.ranks[learnerID], nil
}

func (c *memoryCache) Invalidate(_ context.Context) error {
	c.top = nil
	c.topTotal = 0
	c.ranks = make(map[string]*leaderboard.Standing)
	return nil
}

func rankable(username string, points int) *learner.Learner {
	return &learner.Learner{
		ID:       "id-" + username,
		Username: username,
		Points:   learner.Points(points),
		Role:     learner.RoleStudent,
		Active:   true,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetLeaderboard
// ─────────────────────────────────────────────────────────────────────────────

func TestGetLeaderboard_RanksFromPopulation(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{
		rankable("alice", 300),
		rankable("bob", 500),
		rankable("carol", 100),
	}}
	h := NewGetLeaderboardHandler(source, nil, 0, nil)

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)

	require.Len(t, result.Entries, 3)
	assert.Equal(t, "bob", result.Entries[0].Username)
	assert.Equal(t, leaderboard.Rank(1), result.Entries[0].Rank)
	assert.Equal(t, "carol", result.Entries[2].Username)
	assert.Equal(t, 3, result.Total)
	assert.False(t, result.FromCache)
}

func TestGetLeaderboard_LimitTruncates(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{
		rankable("alice", 300),
		rankable("bob", 500),
		rankable("carol", 100),
	}}
	h := NewGetLeaderboardHandler(source, nil, 0, nil)

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{Limit: 2})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 2)
	assert.Equal(t, 3, result.Total)
}

func TestGetLeaderboard_OffsetPaginates(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{
		rankable("alice", 300),
		rankable("bob", 500),
		rankable("carol", 100),
		rankable("dave", 50),
	}}
	h := NewGetLeaderboardHandler(source, nil, 0, nil)

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, "alice", result.Entries[0].Username)
	assert.Equal(t, leaderboard.Rank(2), result.Entries[0].Rank)
	assert.Equal(t, "carol", result.Entries[1].Username)
	assert.Equal(t, 4, result.Total)

	// Offsets past the end return an empty page, not an error.
	past, err := h.Handle(context.Background(), GetLeaderboardQuery{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past.Entries)
	assert.Equal(t, 4, past.Total)
}

func TestGetLeaderboard_OffsetBypassesCache(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{
		rankable("alice", 300),
		rankable("bob", 500),
	}}
	cache := newMemoryCache()
	h := NewGetLeaderboardHandler(source, cache, time.Minute, nil)
	ctx := context.Background()

	_, err := h.Handle(ctx, GetLeaderboardQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)

	// An offset page never reads the cached first page.
	paged, err := h.Handle(ctx, GetLeaderboardQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.False(t, paged.FromCache)
	assert.Equal(t, 2, source.calls)
	require.Len(t, paged.Entries, 1)
	assert.Equal(t, "alice", paged.Entries[0].Username)
}

func TestGetLeaderboard_CacheAside(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{
		rankable("alice", 300),
		rankable("bob", 500),
	}}
	cache := newMemoryCache()
	h := NewGetLeaderboardHandler(source, cache, time.Minute, nil)
	ctx := context.Background()

	// Miss populates the cache from the database.
	first, err := h.Handle(ctx, GetLeaderboardQuery{})
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, cache.sets)

	// Hit skips the database entirely.
	second, err := h.Handle(ctx, GetLeaderboardQuery{})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first.Entries[0].Username, second.Entries[0].Username)
}

func TestGetLeaderboard_CacheFailureFallsBack(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{rankable("alice", 300)}}
	cache := newMemoryCache()
	cache.failGet = errors.New("connection refused")
	cache.failSet = errors.New("connection refused")
	h := NewGetLeaderboardHandler(source, cache, time.Minute, nil)

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "alice", result.Entries[0].Username)
}

func TestGetLeaderboard_PopulationError(t *testing.T) {
	wantErr := errors.New("db down")
	h := NewGetLeaderboardHandler(&fakePopulation{err: wantErr}, nil, 0, nil)

	_, err := h.Handle(context.Background(), GetLeaderboardQuery{})
	assert.ErrorIs(t, err, wantErr)
}

func TestGetLeaderboardQuery_Validate(t *testing.T) {
	assert.NoError(t, GetLeaderboardQuery{}.Validate())
	assert.NoError(t, GetLeaderboardQuery{Limit: MaxLeaderboardSize}.Validate())
	assert.Error(t, GetLeaderboardQuery{Limit: -1}.Validate())
	assert.Error(t, GetLeaderboardQuery{Limit: MaxLeaderboardSize + 1}.Validate())
	assert.NoError(t, GetLeaderboardQuery{Offset: 40}.Validate())
	assert.Error(t, GetLeaderboardQuery{Offset: -1}.Validate())
}

// ─────────────────────────────────────────────────────────────────────────────
// GetLeaderboardStats
// ─────────────────────────────────────────────────────────────────────────────

func TestGetLeaderboardStats_Aggregates(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{
		rankable("alice", 300),
		rankable("bob", 500),
		rankable("carol", 100),
		rankable("dave", 200),
	}}
	h := NewGetLeaderboardStatsHandler(source, nil)

	result, err := h.Handle(context.Background(), GetLeaderboardStatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, learner.Points(275), result.AveragePoints)
	assert.Equal(t, learner.Points(250), result.MedianPoints)
	assert.Equal(t, learner.Points(500), result.TopPoints)
	assert.False(t, result.GeneratedAt.IsZero())
}

func TestGetLeaderboardStats_EmptyPopulation(t *testing.T) {
	h := NewGetLeaderboardStatsHandler(&fakePopulation{}, nil)

	result, err := h.Handle(context.Background(), GetLeaderboardStatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, learner.Points(0), result.AveragePoints)
	assert.Equal(t, learner.Points(0), result.MedianPoints)
	assert.Equal(t, learner.Points(0), result.TopPoints)
}

func TestGetLeaderboardStats_PopulationError(t *testing.T) {
	wantErr := errors.New("db down")
	h := NewGetLeaderboardStatsHandler(&fakePopulation{err: wantErr}, nil)

	_, err := h.Handle(context.Background(), GetLeaderboardStatsQuery{})
	assert.ErrorIs(t, err, wantErr)
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStanding
// ─────────────────────────────────────────────────────────────────────────────

func TestGetStanding_FromPopulation(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{
		rankable("alice", 300),
		rankable("bob", 500),
		rankable("carol", 100),
	}}
	h := NewGetStandingHandler(source, nil, 0, nil)

	result, err := h.Handle(context.Background(), GetStandingQuery{LearnerID: "id-alice"})
	require.NoError(t, err)

	assert.Equal(t, leaderboard.Rank(2), result.Standing.Rank)
	assert.Equal(t, learner.Points(300), result.Standing.Points)
	assert.Equal(t, 3, result.Standing.Of)
	assert.False(t, result.FromCache)
}

func TestGetStanding_CacheHit(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{
		rankable("alice", 300),
		rankable("bob", 500),
	}}
	cache := newMemoryCache()
	h := NewGetStandingHandler(source, cache, time.Minute, nil)
	ctx := context.Background()

	first, err := h.Handle(ctx, GetStandingQuery{LearnerID: "id-bob"})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := h.Handle(ctx, GetStandingQuery{LearnerID: "id-bob"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Standing.Rank, second.Standing.Rank)
	assert.Equal(t, 1, source.calls)
}

func TestGetStanding_NotRanked(t *testing.T) {
	source := &fakePopulation{learners: []*learner.Learner{rankable("alice", 300)}}
	h := NewGetStandingHandler(source, nil, 0, nil)

	_, err := h.Handle(context.Background(), GetStandingQuery{LearnerID: "id-nobody"})
	assert.ErrorIs(t, err, leaderboard.ErrLearnerNotRanked)
}

func TestGetStandingQuery_Validate(t *testing.T) {
	assert.NoError(t, GetStandingQuery{LearnerID: "l1"}.Validate())
	assert.Error(t, GetStandingQuery{}.Validate())
}
