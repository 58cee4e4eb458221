// Package progress contains the domain model of per-lesson completion state.
// A completion record is the durable fact that a learner opened or finished a
// specific lesson; the false→true completion transition is the only thing
// that may ever trigger a reward.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE DATA: COURSE & LESSON
// Authored by the course CRUD layer, read-only inside the progression engine.
// ══════════════════════════════════════════════════════════════════════════════

// Course carries the attributes the progression engine needs from a course.
type Course struct {
	ID         string
	Title      string
	Difficulty learner.Difficulty
	Active     bool
}

// Lesson is a unit of course content. SortOrder drives the lesson gating:
// a lesson unlocks once its predecessor in the course is completed.
type Lesson struct {
	ID        string
	CourseID  string
	Title     string
	SortOrder int
	Active    bool

	// Course is the owning course, resolved together with the lesson.
	Course Course
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETION RECORD
// ══════════════════════════════════════════════════════════════════════════════

// CompletionRecord tracks one (learner, lesson) pair. Created on first view
// with Completed=false; flips to true at most meaningfully once.
type CompletionRecord struct {
	LearnerID string
	LessonID  string
	CourseID  string

	// Completed - whether the learner has finished the lesson.
	Completed bool

	// Score - optional numeric lesson result, retained for display only.
	// Progression math never reads it.
	Score *int

	// LastAccessedAt - updated on every view, independent of completion.
	LastAccessedAt time.Time

	// CompletedAt - set when the completion transition happens.
	CompletedAt *time.Time
}

// TransitionResult reports the outcome of a MarkCompleted call.
type TransitionResult struct {
	// AlreadyCompleted is true when the record was completed before this
	// call. It is the single source of truth for whether a reward is owed:
	// callers must not re-derive it by re-querying.
	AlreadyCompleted bool
}

// CourseSummary aggregates a learner's standing within one course.
type CourseSummary struct {
	CourseID         string
	LearnerID        string
	TotalLessons     int
	CompletedLessons int
	AverageScore     float64
}

// PercentComplete returns completion as a 0-100 percentage.
func (s CourseSummary) PercentComplete() float64 {
	if s.TotalLessons == 0 {
		return 0
	}
	return float64(s.CompletedLessons) / float64(s.TotalLessons) * 100
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrLessonNotFound - no active lesson with the given ID.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrNotEnrolled - the learner is not enrolled in the lesson's course.
	ErrNotEnrolled = errors.New("learner is not enrolled in the course")

	// ErrLessonLocked - the preceding lesson has not been completed yet.
	ErrLessonLocked = errors.New("lesson is locked: complete the previous lesson first")
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// NewCompletionRecord creates a fresh, not-yet-completed record for a first view.
func NewCompletionRecord(learnerID, lessonID, courseID string, accessedAt time.Time) (*CompletionRecord, error) {
	if learnerID == "" {
		return nil, errors.New("learner id is required")
	}
	if lessonID == "" {
		return nil, errors.New("lesson id is required")
	}

	return &CompletionRecord{
		LearnerID:      learnerID,
		LessonID:       lessonID,
		CourseID:       courseID,
		Completed:      false,
		LastAccessedAt: accessedAt,
	}, nil
}

// MarkCompleted flips the in-memory record to completed and reports whether
// it already was. The durable implementation pushes the same "only if not yet
// completed" condition into a conditional SQL update so the datastore, not
// application logic, arbitrates concurrent submissions.
func (r *CompletionRecord) MarkCompleted(at time.Time) TransitionResult {
	if r.Completed {
		return TransitionResult{AlreadyCompleted: true}
	}

	r.Completed = true
	r.CompletedAt = &at
	r.LastAccessedAt = at
	return TransitionResult{AlreadyCompleted: false}
}

// Touch records a view without affecting completion.
func (r *CompletionRecord) Touch(at time.Time) {
	r.LastAccessedAt = at
}

// String returns a string representation for logging.
func (r *CompletionRecord) String() string {
	return fmt.Sprintf(
		"CompletionRecord{Learner: %s, Lesson: %s, Completed: %t}",
		r.LearnerID, r.LessonID, r.Completed,
	)
}
