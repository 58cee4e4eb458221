package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
	"github.com/learnhub/learnhub-backend/internal/domain/shared"
	"github.com/learnhub/learnhub-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ACCESS COMMAND
// Registers a lesson view: upserts the completion record with a fresh access
// time. Never awards anything and never un-completes a completed lesson.
// ══════════════════════════════════════════════════════════════════════════════

// RecordAccessCommand contains the data to record a lesson view.
type RecordAccessCommand struct {
	// LearnerID is the learner opening the lesson.
	LearnerID string

	// LessonID is the lesson being opened.
	LessonID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordAccessCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("record_access: learner_id is required")
	}
	if c.LessonID == "" {
		return errors.New("record_access: lesson_id is required")
	}
	return nil
}

// RecordAccessResult contains the outcome of a recorded view.
type RecordAccessResult struct {
	// Lesson is the resolved lesson.
	Lesson *progress.Lesson

	// AccessedAt is the recorded access time.
	AccessedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordAccessHandler handles the RecordAccessCommand.
type RecordAccessHandler struct {
	catalog   progress.Catalog
	store     progress.Store
	learners  learner.Repository
	publisher shared.EventPublisher
	logger    *logger.Logger
}

// NewRecordAccessHandler creates a new RecordAccessHandler.
func NewRecordAccessHandler(
	catalog progress.Catalog,
	store progress.Store,
	learners learner.Repository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RecordAccessHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RecordAccessHandler{
		catalog:   catalog,
		store:     store,
		learners:  learners,
		publisher: publisher,
		logger:    log.With(logger.Component("record_access")),
	}
}

// Handle executes the record access command. A single upsert needs no
// transaction; last-writer-wins on the access time is correct.
func (h *RecordAccessHandler) Handle(ctx context.Context, cmd RecordAccessCommand) (*RecordAccessResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_access: validation failed: %w", err)
	}

	lesson, err := h.catalog.GetLesson(ctx, cmd.LessonID)
	if err != nil {
		return nil, err
	}

	enrolled, err := h.catalog.IsEnrolled(ctx, cmd.LearnerID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, progress.ErrNotEnrolled
	}

	exists, err := h.learners.Exists(ctx, cmd.LearnerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, learner.ErrLearnerNotFound
	}

	now := time.Now().UTC()
	if err := h.store.RecordAccess(ctx, cmd.LearnerID, lesson.ID, lesson.CourseID, now); err != nil {
		return nil, err
	}

	if h.publisher != nil {
		event := shared.NewLessonAccessedEvent(cmd.LearnerID, lesson.ID, lesson.CourseID)
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		if err := h.publisher.Publish(event); err != nil {
			h.logger.Error("failed to publish event", logger.Err(err))
		}
	}

	return &RecordAccessResult{Lesson: lesson, AccessedAt: now}, nil
}
