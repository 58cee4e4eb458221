package eventhandler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub-backend/internal/domain/activity"
	"github.com/learnhub/learnhub-backend/internal/domain/shared"
)

type fakeRecorder struct {
	entries  []*activity.Entry
	failures int // number of calls to fail before succeeding
	calls    int
}

func (f *fakeRecorder) Record(_ context.Context, entry *activity.Entry) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("insert failed")
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeSubscriber struct {
	subscriptions map[shared.EventType]shared.EventHandler
}

func (f *fakeSubscriber) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	f.subscriptions[eventType] = handler
	return nil
}

func (f *fakeSubscriber) SubscribeAll(shared.EventHandler) error { return nil }

func TestActivityLogger_RecordsCompletion(t *testing.T) {
	recorder := &fakeRecorder{}
	al := NewActivityLogger(recorder, nil)

	event := shared.NewLessonCompletedEvent("learner-1", "lesson-1", "Hello, World", "course-1", "beginner", 50)
	require.NoError(t, al.Handle(event))

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, "learner-1", entry.LearnerID)
	assert.Equal(t, activity.ActionLessonCompleted, entry.Action)
	assert.Equal(t, "lesson-1", entry.Details["lesson_id"])
	assert.Equal(t, event.OccurredAt(), entry.CreatedAt)
}

func TestActivityLogger_RetriesTransientFailures(t *testing.T) {
	recorder := &fakeRecorder{failures: 2}
	al := NewActivityLogger(recorder, nil)

	require.NoError(t, al.Handle(shared.NewLevelUpEvent("learner-1", 1, 2)))

	assert.Equal(t, 3, recorder.calls)
	require.Len(t, recorder.entries, 1)
	assert.Equal(t, activity.ActionLevelUp, recorder.entries[0].Action)
}

func TestActivityLogger_DropsAfterExhaustedRetries(t *testing.T) {
	recorder := &fakeRecorder{failures: 100}
	al := NewActivityLogger(recorder, nil)

	// Fire-and-forget: the error is logged, never returned.
	assert.NoError(t, al.Handle(shared.NewLessonAccessedEvent("learner-1", "lesson-1", "course-1")))
	assert.Empty(t, recorder.entries)
}

func TestActivityLogger_IgnoresUnmappedEvents(t *testing.T) {
	recorder := &fakeRecorder{}
	al := NewActivityLogger(recorder, nil)

	event := shared.NewPointsAwardedEvent("learner-1", 50, 50, 1, "lesson_completion")
	require.NoError(t, al.Handle(event))

	assert.Empty(t, recorder.entries)
	assert.Zero(t, recorder.calls)
}

func TestActivityLogger_RegisterSubscribesRecordedTypes(t *testing.T) {
	bus := &fakeSubscriber{subscriptions: make(map[shared.EventType]shared.EventHandler)}
	al := NewActivityLogger(&fakeRecorder{}, nil)

	require.NoError(t, al.Register(bus))

	for _, et := range []shared.EventType{
		shared.EventLessonAccessed,
		shared.EventLessonCompleted,
		shared.EventAchievementUnlocked,
		shared.EventLevelUp,
	} {
		assert.Contains(t, bus.subscriptions, et)
	}
	assert.NotContains(t, bus.subscriptions, shared.EventPointsAwarded)
}
