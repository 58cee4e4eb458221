package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/activity"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/pkg/logger"
	"github.com/learnhub/learnhub-backend/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACTIVITY QUERY
// A learner's recent activity feed from the audit log.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultActivitySize is the feed length when the query does not set one.
const DefaultActivitySize = 20

// MaxActivitySize caps a single feed request.
const MaxActivitySize = 100

// GetActivityQuery contains parameters for fetching a learner's activity feed.
type GetActivityQuery struct {
	// LearnerID is the learner whose feed is requested.
	LearnerID string

	// Limit is the maximum number of entries to return; 0 means the default.
	Limit int
}

// Validate validates the query.
func (q GetActivityQuery) Validate() error {
	if q.LearnerID == "" {
		return errors.New("get_activity: learner_id is required")
	}
	if q.Limit < 0 {
		return errors.New("get_activity: limit cannot be negative")
	}
	if q.Limit > MaxActivitySize {
		return fmt.Errorf("get_activity: limit cannot exceed %d", MaxActivitySize)
	}
	return nil
}

// GetActivityResult contains the activity feed.
type GetActivityResult struct {
	// Entries are the newest audit-log rows, most recent first.
	Entries []*activity.Entry

	// Today is the number of entries recorded since the start of the
	// current UTC day.
	Today int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetActivityHandler handles the GetActivityQuery.
type GetActivityHandler struct {
	reader   activity.Reader
	learners learner.Repository
	logger   *logger.Logger
}

// NewGetActivityHandler creates a new GetActivityHandler.
func NewGetActivityHandler(reader activity.Reader, learners learner.Repository, log *logger.Logger) *GetActivityHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetActivityHandler{
		reader:   reader,
		learners: learners,
		logger:   log.With(logger.Component("get_activity")),
	}
}

// Handle executes the get activity query. Returns learner.ErrLearnerNotFound
// for unknown learner IDs.
func (h *GetActivityHandler) Handle(ctx context.Context, q GetActivityQuery) (*GetActivityResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	exists, err := h.learners.Exists(ctx, q.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("get_activity: %w", err)
	}
	if !exists {
		return nil, learner.ErrLearnerNotFound
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultActivitySize
	}

	entries, err := h.reader.RecentFor(ctx, q.LearnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("get_activity: %w", err)
	}

	today, err := h.reader.CountSince(ctx, q.LearnerID, timeutil.StartOfDay(time.Now()))
	if err != nil {
		// The feed is still useful without the counter.
		h.logger.Warn("activity count failed", logger.Err(err), logger.LearnerID(q.LearnerID))
		today = 0
	}

	return &GetActivityResult{Entries: entries, Today: today}, nil
}
