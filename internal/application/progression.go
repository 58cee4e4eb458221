// Package application assembles the progression use cases behind one facade.
// Transport layers talk to ProgressionService; the individual command and
// query handlers stay independently constructible for tests.
package application

import (
	"context"
	"time"

	"github.com/learnhub/learnhub-backend/internal/application/command"
	"github.com/learnhub/learnhub-backend/internal/application/query"
	"github.com/learnhub/learnhub-backend/internal/domain/achievement"
	"github.com/learnhub/learnhub-backend/internal/domain/activity"
	"github.com/learnhub/learnhub-backend/internal/domain/leaderboard"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
	"github.com/learnhub/learnhub-backend/internal/domain/shared"
	"github.com/learnhub/learnhub-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// ProgressionService is the single entry point of the progression engine.
type ProgressionService struct {
	completeLesson      *command.CompleteLessonHandler
	recordAccess        *command.RecordAccessHandler
	registerLearner     *command.RegisterLearnerHandler
	getLeaderboard      *query.GetLeaderboardHandler
	getLeaderboardStats *query.GetLeaderboardStatsHandler
	getStanding         *query.GetStandingHandler
	getProgress         *query.GetProgressHandler
	getActivity         *query.GetActivityHandler
}

// Config bundles the dependencies of the progression service.
type Config struct {
	// UnitOfWork runs the completion flow transactionally.
	UnitOfWork command.UnitOfWork

	// Catalog, Store, Learners and Achievements are the standalone (pool
	// bound) repositories used outside the completion transaction.
	Catalog      progress.Catalog
	Store        progress.Store
	Learners     learner.Repository
	Achievements achievement.Repository

	// Activity reads the audit log for the activity feed.
	Activity activity.Reader

	// Population supplies leaderboard snapshots.
	Population leaderboard.PopulationSource

	// Cache is the optional leaderboard cache.
	Cache leaderboard.Cache

	// CacheTTL is the leaderboard cache lifetime.
	CacheTTL time.Duration

	// Rewards is the difficulty→points policy.
	Rewards learner.RewardTable

	// Publisher receives post-commit domain events.
	Publisher shared.EventPublisher

	// Logger for structured logging.
	Logger *logger.Logger
}

// NewProgressionService creates a fully wired ProgressionService.
func NewProgressionService(cfg Config) (*ProgressionService, error) {
	if cfg.Rewards == nil {
		cfg.Rewards = learner.DefaultRewardTable()
	}
	if err := cfg.Rewards.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	return &ProgressionService{
		completeLesson: command.NewCompleteLessonHandler(
			cfg.UnitOfWork, cfg.Rewards, cfg.Publisher, cfg.Cache, cfg.Logger,
		),
		recordAccess: command.NewRecordAccessHandler(
			cfg.Catalog, cfg.Store, cfg.Learners, cfg.Publisher, cfg.Logger,
		),
		registerLearner: command.NewRegisterLearnerHandler(cfg.Learners, cfg.Logger),
		getLeaderboard: query.NewGetLeaderboardHandler(
			cfg.Population, cfg.Cache, cfg.CacheTTL, cfg.Logger,
		),
		getLeaderboardStats: query.NewGetLeaderboardStatsHandler(cfg.Population, cfg.Logger),
		getStanding: query.NewGetStandingHandler(
			cfg.Population, cfg.Cache, cfg.CacheTTL, cfg.Logger,
		),
		getProgress: query.NewGetProgressHandler(
			cfg.Learners, cfg.Store, cfg.Achievements, cfg.Logger,
		),
		getActivity: query.NewGetActivityHandler(cfg.Activity, cfg.Learners, cfg.Logger),
	}, nil
}

// CompleteLesson marks a lesson completed and applies the reward chain.
func (s *ProgressionService) CompleteLesson(ctx context.Context, cmd command.CompleteLessonCommand) (*command.CompleteLessonResult, error) {
	return s.completeLesson.Handle(ctx, cmd)
}

// RecordAccess registers a lesson view.
func (s *ProgressionService) RecordAccess(ctx context.Context, cmd command.RecordAccessCommand) (*command.RecordAccessResult, error) {
	return s.recordAccess.Handle(ctx, cmd)
}

// RegisterLearner creates a new learner account.
func (s *ProgressionService) RegisterLearner(ctx context.Context, cmd command.RegisterLearnerCommand) (*command.RegisterLearnerResult, error) {
	return s.registerLearner.Handle(ctx, cmd)
}

// GetLeaderboard returns the ranked leaderboard.
func (s *ProgressionService) GetLeaderboard(ctx context.Context, q query.GetLeaderboardQuery) (*query.GetLeaderboardResult, error) {
	return s.getLeaderboard.Handle(ctx, q)
}

// GetLeaderboardStats returns population-wide aggregates for admin reports.
func (s *ProgressionService) GetLeaderboardStats(ctx context.Context, q query.GetLeaderboardStatsQuery) (*query.GetLeaderboardStatsResult, error) {
	return s.getLeaderboardStats.Handle(ctx, q)
}

// GetStanding returns one learner's rank.
func (s *ProgressionService) GetStanding(ctx context.Context, q query.GetStandingQuery) (*query.GetStandingResult, error) {
	return s.getStanding.Handle(ctx, q)
}

// GetProgress returns a learner's dashboard state.
func (s *ProgressionService) GetProgress(ctx context.Context, q query.GetProgressQuery) (*query.GetProgressResult, error) {
	return s.getProgress.Handle(ctx, q)
}

// GetActivity returns a learner's recent activity feed.
func (s *ProgressionService) GetActivity(ctx context.Context, q query.GetActivityQuery) (*query.GetActivityResult, error) {
	return s.getActivity.Handle(ctx, q)
}
