// Package activity contains the audit-log model for learner actions.
// Entries are advisory analytics data: writing them happens after the
// progression transaction commits and a failed write never fails the
// operation that produced it.
package activity

import (
	"errors"
	"time"
)

// Domain errors for activity package.
var (
	ErrInvalidLearnerID = errors.New("activity: invalid learner ID")
	ErrInvalidAction    = errors.New("activity: invalid action")
)

// Action classifies a logged learner action.
type Action string

const (
	// ActionLessonAccessed - the learner opened a lesson.
	ActionLessonAccessed Action = "lesson_accessed"
	// ActionLessonCompleted - the learner completed a lesson.
	ActionLessonCompleted Action = "lesson_completed"
	// ActionAchievementUnlocked - an achievement was granted.
	ActionAchievementUnlocked Action = "achievement_unlocked"
	// ActionLevelUp - the learner's level increased.
	ActionLevelUp Action = "level_up"
)

// IsValid checks if the action is one of the known kinds.
func (a Action) IsValid() bool {
	switch a {
	case ActionLessonAccessed, ActionLessonCompleted, ActionAchievementUnlocked, ActionLevelUp:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// Entry is one audit-log row.
type Entry struct {
	ID        int64
	LearnerID string
	Action    Action

	// Details carries action-specific context, stored as JSONB.
	Details map[string]interface{}

	CreatedAt time.Time
}

// NewEntry creates a validated log entry.
func NewEntry(learnerID string, action Action, details map[string]interface{}) (*Entry, error) {
	if learnerID == "" {
		return nil, ErrInvalidLearnerID
	}
	if !action.IsValid() {
		return nil, ErrInvalidAction
	}
	if details == nil {
		details = map[string]interface{}{}
	}

	return &Entry{
		LearnerID: learnerID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}, nil
}
