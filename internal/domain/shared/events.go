// Package shared contains common domain types, errors, and events.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the progression engine.
const (
	// Progress events
	EventLessonAccessed  EventType = "progress.lesson_accessed"
	EventLessonCompleted EventType = "progress.lesson_completed"

	// Score events
	EventPointsAwarded EventType = "score.points_awarded"
	EventLevelUp       EventType = "score.level_up"

	// Achievement events
	EventAchievementUnlocked EventType = "achievement.unlocked"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// LessonAccessedEvent is emitted every time a learner opens a lesson.
type LessonAccessedEvent struct {
	BaseEvent
	LessonID string `json:"lesson_id"`
	CourseID string `json:"course_id"`
}

// Payload implements Event interface.
func (e LessonAccessedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"lesson_id": e.LessonID,
		"course_id": e.CourseID,
	}
}

// NewLessonAccessedEvent creates a LessonAccessedEvent.
func NewLessonAccessedEvent(learnerID, lessonID, courseID string) LessonAccessedEvent {
	return LessonAccessedEvent{
		BaseEvent: NewBaseEvent(EventLessonAccessed, learnerID),
		LessonID:  lessonID,
		CourseID:  courseID,
	}
}

// LessonCompletedEvent is emitted when a learner completes a lesson for the
// first time. Re-submissions of an already-completed lesson emit nothing.
type LessonCompletedEvent struct {
	BaseEvent
	LessonID      string `json:"lesson_id"`
	LessonTitle   string `json:"lesson_title"`
	CourseID      string `json:"course_id"`
	Difficulty    string `json:"difficulty"`
	PointsAwarded int    `json:"points_awarded"`
}

// Payload implements Event interface.
func (e LessonCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"lesson_id":      e.LessonID,
		"lesson_title":   e.LessonTitle,
		"course_id":      e.CourseID,
		"difficulty":     e.Difficulty,
		"points_awarded": e.PointsAwarded,
	}
}

// NewLessonCompletedEvent creates a LessonCompletedEvent.
func NewLessonCompletedEvent(learnerID, lessonID, lessonTitle, courseID, difficulty string, points int) LessonCompletedEvent {
	return LessonCompletedEvent{
		BaseEvent:     NewBaseEvent(EventLessonCompleted, learnerID),
		LessonID:      lessonID,
		LessonTitle:   lessonTitle,
		CourseID:      courseID,
		Difficulty:    difficulty,
		PointsAwarded: points,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Score Events
// ═══════════════════════════════════════════════════════════════════════════

// PointsAwardedEvent is emitted whenever a reward is applied to a learner.
type PointsAwardedEvent struct {
	BaseEvent
	Delta     int    `json:"delta"`
	NewPoints int    `json:"new_points"`
	NewLevel  int    `json:"new_level"`
	Source    string `json:"source"`
}

// Payload implements Event interface.
func (e PointsAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"delta":      e.Delta,
		"new_points": e.NewPoints,
		"new_level":  e.NewLevel,
		"source":     e.Source,
	}
}

// NewPointsAwardedEvent creates a PointsAwardedEvent.
func NewPointsAwardedEvent(learnerID string, delta, newPoints, newLevel int, source string) PointsAwardedEvent {
	return PointsAwardedEvent{
		BaseEvent: NewBaseEvent(EventPointsAwarded, learnerID),
		Delta:     delta,
		NewPoints: newPoints,
		NewLevel:  newLevel,
		Source:    source,
	}
}

// LevelUpEvent is emitted when a reward pushes a learner past a level boundary.
type LevelUpEvent struct {
	BaseEvent
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
	}
}

// NewLevelUpEvent creates a LevelUpEvent.
func NewLevelUpEvent(learnerID string, oldLevel, newLevel int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, learnerID),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Events
// ═══════════════════════════════════════════════════════════════════════════

// AchievementUnlockedEvent is emitted once per newly granted achievement.
type AchievementUnlockedEvent struct {
	BaseEvent
	AchievementID   string `json:"achievement_id"`
	AchievementName string `json:"achievement_name"`
	PointsRequired  int    `json:"points_required"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"achievement_id":   e.AchievementID,
		"achievement_name": e.AchievementName,
		"points_required":  e.PointsRequired,
	}
}

// NewAchievementUnlockedEvent creates an AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(learnerID, achievementID, name string, pointsRequired int) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:       NewBaseEvent(EventAchievementUnlocked, learnerID),
		AchievementID:   achievementID,
		AchievementName: name,
		PointsRequired:  pointsRequired,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish publishes an event to all subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all event types.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
