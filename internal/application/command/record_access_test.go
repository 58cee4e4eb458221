package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
	"github.com/learnhub/learnhub-backend/internal/domain/shared"
)

func newAccessHandler(fx *completionFixture) *RecordAccessHandler {
	return NewRecordAccessHandler(fx.ports.catalog, fx.ports.store, fx.ports.learners, fx.publisher, nil)
}

func TestRecordAccess_UpsertsAccessTime(t *testing.T) {
	fx := newCompletionFixture(t)
	h := newAccessHandler(fx)

	result, err := h.Handle(context.Background(), RecordAccessCommand{
		LearnerID: "learner-1",
		LessonID:  "lesson-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "lesson-1", result.Lesson.ID)
	assert.False(t, result.AccessedAt.IsZero())

	stored, ok := fx.ports.store.accessed["learner-1|lesson-1"]
	require.True(t, ok)
	assert.Equal(t, result.AccessedAt, stored)

	// A view never awards anything.
	assert.Equal(t, learner.Points(0), fx.ports.learners.byID["learner-1"].Points)
	assert.Equal(t, []shared.EventType{shared.EventLessonAccessed}, fx.publisher.types())
}

func TestRecordAccess_LastWriterWins(t *testing.T) {
	fx := newCompletionFixture(t)
	h := newAccessHandler(fx)
	ctx := context.Background()
	cmd := RecordAccessCommand{LearnerID: "learner-1", LessonID: "lesson-1"}

	first, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	second, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.False(t, second.AccessedAt.Before(first.AccessedAt))
	assert.Equal(t, second.AccessedAt, fx.ports.store.accessed["learner-1|lesson-1"])
}

func TestRecordAccess_NotEnrolled(t *testing.T) {
	fx := newCompletionFixture(t)
	delete(fx.ports.catalog.enrolled, "learner-1|course-1")

	_, err := newAccessHandler(fx).Handle(context.Background(), RecordAccessCommand{
		LearnerID: "learner-1",
		LessonID:  "lesson-1",
	})
	assert.ErrorIs(t, err, progress.ErrNotEnrolled)
	assert.Empty(t, fx.ports.store.accessed)
}

func TestRecordAccess_UnknownLearner(t *testing.T) {
	fx := newCompletionFixture(t)
	fx.ports.catalog.enrolled["ghost|course-1"] = true

	_, err := newAccessHandler(fx).Handle(context.Background(), RecordAccessCommand{
		LearnerID: "ghost",
		LessonID:  "lesson-1",
	})
	assert.ErrorIs(t, err, learner.ErrLearnerNotFound)
}

func TestRecordAccess_UnknownLesson(t *testing.T) {
	fx := newCompletionFixture(t)

	_, err := newAccessHandler(fx).Handle(context.Background(), RecordAccessCommand{
		LearnerID: "learner-1",
		LessonID:  "no-such-lesson",
	})
	assert.ErrorIs(t, err, progress.ErrLessonNotFound)
}

func TestRegisterLearner(t *testing.T) {
	learners := &fakeLearners{byID: make(map[string]*learner.Learner)}
	h := NewRegisterLearnerHandler(learners, nil)
	ctx := context.Background()

	result, err := h.Handle(ctx, RegisterLearnerCommand{Username: "dave"})
	require.NoError(t, err)

	l := result.Learner
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "dave", l.Username)
	assert.Equal(t, "dave", l.DisplayName)
	assert.Equal(t, learner.RoleStudent, l.Role)
	assert.Equal(t, learner.Level(1), l.Level)

	_, err = h.Handle(ctx, RegisterLearnerCommand{Username: "dave"})
	assert.ErrorIs(t, err, learner.ErrLearnerAlreadyExists)

	_, err = h.Handle(ctx, RegisterLearnerCommand{})
	assert.Error(t, err)
}
