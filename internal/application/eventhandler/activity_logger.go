// Package eventhandler contains subscribers that react to domain events
// after the owning transaction has committed. Handlers here are advisory:
// they may retry, they may log failures, but they never propagate an error
// back into the operation that emitted the event.
package eventhandler

import (
	"context"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/activity"
	"github.com/learnhub/learnhub-backend/internal/domain/shared"
	"github.com/learnhub/learnhub-backend/pkg/logger"
	"github.com/learnhub/learnhub-backend/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY LOGGER
// ══════════════════════════════════════════════════════════════════════════════

// ActivityLogger writes audit-log entries for progression events. Writes are
// retried with backoff; a write that still fails after all attempts is logged
// and dropped, matching the fire-and-forget contract of the activity log.
type ActivityLogger struct {
	recorder activity.Recorder
	retrier  *retry.Retrier
	timeout  time.Duration
	logger   *logger.Logger
}

// NewActivityLogger creates a new ActivityLogger.
func NewActivityLogger(recorder activity.Recorder, log *logger.Logger) *ActivityLogger {
	if log == nil {
		log = logger.Default()
	}
	return &ActivityLogger{
		recorder: recorder,
		retrier:  retry.ActivityLogRetrier(),
		timeout:  10 * time.Second,
		logger:   log.With(logger.Component("activity_logger")),
	}
}

// Register subscribes the logger to the events it records.
func (a *ActivityLogger) Register(bus shared.EventSubscriber) error {
	for _, eventType := range []shared.EventType{
		shared.EventLessonAccessed,
		shared.EventLessonCompleted,
		shared.EventAchievementUnlocked,
		shared.EventLevelUp,
	} {
		if err := bus.Subscribe(eventType, a.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle writes one audit-log entry for the event.
func (a *ActivityLogger) Handle(event shared.Event) error {
	action, ok := actionFor(event.EventType())
	if !ok {
		return nil
	}

	entry, err := activity.NewEntry(event.AggregateID(), action, event.Payload())
	if err != nil {
		a.logger.Error("invalid activity entry", logger.Err(err))
		return nil
	}
	entry.CreatedAt = event.OccurredAt()

	// The bus runs handlers without a caller context; bound the write here.
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	err = a.retrier.Do(ctx, func(ctx context.Context) error {
		return a.recorder.Record(ctx, entry)
	})
	if err != nil {
		a.logger.Error("activity log write failed",
			logger.LearnerID(entry.LearnerID),
			logger.String("action", string(entry.Action)),
			logger.Err(err),
		)
	}

	return nil
}

func actionFor(eventType shared.EventType) (activity.Action, bool) {
	switch eventType {
	case shared.EventLessonAccessed:
		return activity.ActionLessonAccessed, true
	case shared.EventLessonCompleted:
		return activity.ActionLessonCompleted, true
	case shared.EventAchievementUnlocked:
		return activity.ActionAchievementUnlocked, true
	case shared.EventLevelUp:
		return activity.ActionLevelUp, true
	default:
		return "", false
	}
}
