package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/achievement"
	"github.com/learnhub/learnhub-backend/internal/domain/leaderboard"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
	"github.com/learnhub/learnhub-backend/internal/domain/shared"
	"github.com/learnhub/learnhub-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE LESSON COMMAND
// The write path of the progression engine: flips the completion flag, applies
// the reward, recomputes the level and grants newly eligible achievements -
// all inside one transaction, so a crash mid-way never leaves a completed
// lesson without its points or points without their achievements.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteLessonCommand contains the data to complete a lesson.
type CompleteLessonCommand struct {
	// LearnerID is the learner submitting the completion.
	LearnerID string

	// LessonID is the lesson being completed.
	LessonID string

	// Score is an optional numeric lesson result, retained for display.
	Score *int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c CompleteLessonCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("complete_lesson: learner_id is required")
	}
	if c.LessonID == "" {
		return errors.New("complete_lesson: lesson_id is required")
	}
	if c.Score != nil && (*c.Score < 0 || *c.Score > 100) {
		return errors.New("complete_lesson: score must be between 0 and 100")
	}
	return nil
}

// CompleteLessonResult contains the outcome of a completion attempt.
type CompleteLessonResult struct {
	// AlreadyCompleted is true when the lesson was completed before this
	// call; nothing was awarded in that case.
	AlreadyCompleted bool

	// PointsAwarded is the reward applied (0 when AlreadyCompleted).
	PointsAwarded learner.Points

	// NewTotals is the post-reward state (nil when AlreadyCompleted).
	NewTotals *learner.NewTotals

	// LeveledUp is true when the reward pushed the learner past a level
	// boundary.
	LeveledUp bool

	// PreviousLevel is the level before the reward.
	PreviousLevel learner.Level

	// Unlocked lists achievements granted by this completion.
	Unlocked []achievement.Achievement

	// CompletedAt is the completion timestamp.
	CompletedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CompleteLessonHandler handles the CompleteLessonCommand.
type CompleteLessonHandler struct {
	uow       UnitOfWork
	rewards   learner.RewardTable
	publisher shared.EventPublisher
	cache     leaderboard.Cache
	logger    *logger.Logger
}

// NewCompleteLessonHandler creates a new CompleteLessonHandler.
// The cache may be nil; invalidation is then skipped.
func NewCompleteLessonHandler(
	uow UnitOfWork,
	rewards learner.RewardTable,
	publisher shared.EventPublisher,
	cache leaderboard.Cache,
	log *logger.Logger,
) *CompleteLessonHandler {
	if log == nil {
		log = logger.Default()
	}
	return &CompleteLessonHandler{
		uow:       uow,
		rewards:   rewards,
		publisher: publisher,
		cache:     cache,
		logger:    log.With(logger.Component("complete_lesson")),
	}
}

// Handle executes the complete lesson command.
func (h *CompleteLessonHandler) Handle(ctx context.Context, cmd CompleteLessonCommand) (*CompleteLessonResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("complete_lesson: validation failed: %w", err)
	}

	now := time.Now().UTC()
	result := &CompleteLessonResult{CompletedAt: now}

	var (
		lesson *progress.Lesson
		before *learner.Learner
	)

	err := h.uow.WithinTx(ctx, func(ports TxPorts) error {
		var err error

		// Resolve the lesson with its course; the difficulty decides the reward.
		lesson, err = ports.Catalog().GetLesson(ctx, cmd.LessonID)
		if err != nil {
			return err
		}

		enrolled, err := ports.Catalog().IsEnrolled(ctx, cmd.LearnerID, lesson.CourseID)
		if err != nil {
			return err
		}
		if !enrolled {
			return progress.ErrNotEnrolled
		}

		// Lesson gating: the predecessor in course order must be completed.
		prev, err := ports.Catalog().PrecedingLesson(ctx, lesson)
		if err != nil {
			return err
		}
		if prev != nil {
			done, err := ports.Progress().IsCompleted(ctx, cmd.LearnerID, prev.ID)
			if err != nil {
				return err
			}
			if !done {
				return progress.ErrLessonLocked
			}
		}

		before, err = ports.Learners().GetByID(ctx, cmd.LearnerID)
		if err != nil {
			return err
		}
		result.PreviousLevel = before.Level

		// The conditional upsert arbitrates concurrent submissions: exactly
		// one caller observes the false→true transition.
		transition, err := ports.Progress().MarkCompleted(ctx, cmd.LearnerID, lesson.ID, lesson.CourseID, now, cmd.Score)
		if err != nil {
			return err
		}
		if transition.AlreadyCompleted {
			result.AlreadyCompleted = true
			return nil
		}

		reward, err := h.rewards.RewardFor(lesson.Course.Difficulty)
		if err != nil {
			return err
		}

		totals, err := ports.Accumulator().ApplyReward(ctx, cmd.LearnerID, reward)
		if err != nil {
			return err
		}

		unlocked, err := ports.Evaluator().Evaluate(ctx, cmd.LearnerID, now)
		if err != nil {
			return err
		}

		result.PointsAwarded = reward
		result.NewTotals = totals
		result.LeveledUp = totals.Level > before.Level
		result.Unlocked = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyCompleted {
		h.logger.Debug("lesson already completed",
			logger.LearnerID(cmd.LearnerID),
			logger.LessonID(cmd.LessonID),
		)
		return result, nil
	}

	h.logger.Info("lesson completed",
		logger.LearnerID(cmd.LearnerID),
		logger.LessonID(lesson.ID),
		logger.CourseID(lesson.CourseID),
		logger.PointsAmount(int(result.PointsAwarded)),
		logger.Int("new_level", int(result.NewTotals.Level)),
	)

	h.publishEvents(cmd, lesson, result)
	h.invalidateLeaderboard(ctx)

	return result, nil
}

// publishEvents emits the domain events of a successful completion. Events
// fire after commit; a publish failure is logged, never returned.
func (h *CompleteLessonHandler) publishEvents(cmd CompleteLessonCommand, lesson *progress.Lesson, result *CompleteLessonResult) {
	if h.publisher == nil {
		return
	}

	events := make([]shared.Event, 0, 3+len(result.Unlocked))

	completed := shared.NewLessonCompletedEvent(
		cmd.LearnerID,
		lesson.ID,
		lesson.Title,
		lesson.CourseID,
		lesson.Course.Difficulty.String(),
		int(result.PointsAwarded),
	)
	completed.BaseEvent = completed.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	events = append(events, completed)

	events = append(events, shared.NewPointsAwardedEvent(
		cmd.LearnerID,
		int(result.PointsAwarded),
		int(result.NewTotals.Points),
		int(result.NewTotals.Level),
		"lesson_completion",
	))

	if result.LeveledUp {
		events = append(events, shared.NewLevelUpEvent(
			cmd.LearnerID,
			int(result.PreviousLevel),
			int(result.NewTotals.Level),
		))
	}

	for _, a := range result.Unlocked {
		events = append(events, shared.NewAchievementUnlockedEvent(
			cmd.LearnerID,
			a.ID,
			a.Name,
			int(a.PointsRequired),
		))
	}

	for _, event := range events {
		if err := h.publisher.Publish(event); err != nil {
			h.logger.Error("failed to publish event",
				logger.String("event_type", string(event.EventType())),
				logger.Err(err),
			)
		}
	}
}

// invalidateLeaderboard drops the cached leaderboard after a committed
// completion. Best effort: readers fall back to the database on failure.
func (h *CompleteLessonHandler) invalidateLeaderboard(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("failed to invalidate leaderboard cache", logger.Err(err))
	}
}
