package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/learnhub-backend/internal/domain/achievement"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
	"github.com/learnhub/learnhub-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// A learner's dashboard view: totals, per-course completion and achievements.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressQuery contains parameters for fetching a learner's progress.
type GetProgressQuery struct {
	// LearnerID is the learner whose progress is requested.
	LearnerID string

	// CourseID optionally narrows the summary to one course. When empty,
	// only the totals and achievements are returned.
	CourseID string
}

// Validate validates the query.
func (q GetProgressQuery) Validate() error {
	if q.LearnerID == "" {
		return errors.New("get_progress: learner_id is required")
	}
	return nil
}

// GetProgressResult contains the learner's progression state.
type GetProgressResult struct {
	// Learner holds the identity and current totals.
	Learner *learner.Learner

	// CourseSummary is the per-course breakdown (nil unless CourseID set).
	CourseSummary *progress.CourseSummary

	// Achievements are the learner's grants, newest first.
	Achievements []achievement.Grant
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressHandler handles the GetProgressQuery.
type GetProgressHandler struct {
	learners     learner.Repository
	store        progress.Store
	achievements achievement.Repository
	logger       *logger.Logger
}

// NewGetProgressHandler creates a new GetProgressHandler.
func NewGetProgressHandler(
	learners learner.Repository,
	store progress.Store,
	achievements achievement.Repository,
	log *logger.Logger,
) *GetProgressHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetProgressHandler{
		learners:     learners,
		store:        store,
		achievements: achievements,
		logger:       log.With(logger.Component("get_progress")),
	}
}

// Handle executes the get progress query.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*GetProgressResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	l, err := h.learners.GetByID(ctx, q.LearnerID)
	if err != nil {
		return nil, err
	}

	result := &GetProgressResult{Learner: l}

	if q.CourseID != "" {
		summary, err := h.store.CourseSummary(ctx, q.LearnerID, q.CourseID)
		if err != nil {
			return nil, fmt.Errorf("get_progress: course summary: %w", err)
		}
		result.CourseSummary = summary
	}

	grants, err := h.achievements.GrantsFor(ctx, q.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get_progress: achievements: %w", err)
	}
	result.Achievements = grants

	return result, nil
}
