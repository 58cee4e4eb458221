package progress

import (
	"context"
	"time"
)

// Store defines the persistence port for completion records. The conditional
// semantics of MarkCompleted are part of the contract, not an implementation
// detail: the false→true transition must be decided by the datastore.
type Store interface {
	// RecordAccess upserts the (learner, lesson) record with
	// last_accessed_at = now. It never creates a reward obligation.
	RecordAccess(ctx context.Context, learnerID, lessonID, courseID string, at time.Time) error

	// MarkCompleted upserts the record with completed = true and reports
	// whether it was already completed before this call, using a conditional
	// update so concurrent submissions resolve to exactly one transition.
	// A non-nil score is stored on the record; it never affects progression.
	MarkCompleted(ctx context.Context, learnerID, lessonID, courseID string, at time.Time, score *int) (TransitionResult, error)

	// Get returns the record for the pair, or nil when the learner has never
	// opened the lesson.
	Get(ctx context.Context, learnerID, lessonID string) (*CompletionRecord, error)

	// IsCompleted reports whether the learner has completed the lesson.
	IsCompleted(ctx context.Context, learnerID, lessonID string) (bool, error)

	// CourseSummary aggregates completed/total lessons and average score for
	// one learner in one course.
	CourseSummary(ctx context.Context, learnerID, courseID string) (*CourseSummary, error)
}

// Catalog is the read-only port onto course/lesson reference data owned by
// the authoring layer.
type Catalog interface {
	// GetLesson returns an active lesson joined with its course, or
	// ErrLessonNotFound.
	GetLesson(ctx context.Context, lessonID string) (*Lesson, error)

	// PrecedingLesson returns the active lesson immediately before the given
	// one in course order, or nil when it is the first lesson.
	PrecedingLesson(ctx context.Context, lesson *Lesson) (*Lesson, error)

	// IsEnrolled reports whether the learner is enrolled in the course.
	IsEnrolled(ctx context.Context, learnerID, courseID string) (bool, error)

	// CourseLessons returns the active lessons of a course in course order.
	CourseLessons(ctx context.Context, courseID string) ([]*Lesson, error)
}
