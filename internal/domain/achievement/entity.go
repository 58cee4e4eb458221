// Package achievement contains the achievement reference data and grant model.
// An achievement is a points threshold; a grant is the durable fact that a
// learner crossed it. Grants are created exactly once per (learner,
// achievement) pair and never revoked.
package achievement

import (
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE DATA
// ══════════════════════════════════════════════════════════════════════════════

// Achievement is an immutable threshold definition.
type Achievement struct {
	// ID - unique identifier.
	ID string

	// Name - display name, e.g. "Bronze Star".
	Name string

	// Description - short display text.
	Description string

	// Icon - CSS icon class used by the web frontend.
	Icon string

	// PointsRequired - the monotonic threshold; a learner is eligible once
	// their points reach it.
	PointsRequired learner.Points
}

// EligibleAt reports whether the threshold is satisfied by the given points.
func (a Achievement) EligibleAt(points learner.Points) bool {
	return a.PointsRequired <= points
}

// DefaultAchievements returns the standard achievement ladder, seeded into
// the database by cmd/seed.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{Name: "Bronze Star", Description: "Earn 500 points", Icon: "fas fa-star", PointsRequired: 500},
		{Name: "Silver Shield", Description: "Earn 1,000 points", Icon: "fas fa-shield-alt", PointsRequired: 1000},
		{Name: "Golden Crown", Description: "Earn 5,000 points", Icon: "fas fa-crown", PointsRequired: 5000},
		{Name: "Platinum Chalice", Description: "Earn 10,000 points", Icon: "fas fa-trophy", PointsRequired: 10000},
		{Name: "Diamond Trophy", Description: "Earn 20,000 points", Icon: "fas fa-gem", PointsRequired: 20000},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GRANT
// ══════════════════════════════════════════════════════════════════════════════

// Grant is the junction entity recording one unlocked achievement.
// At most one grant row exists per (learner, achievement) pair; the
// uniqueness constraint on that key is the evaluator's idempotence guard.
type Grant struct {
	LearnerID     string
	AchievementID string
	AchievedAt    time.Time

	// Achievement - the definition, resolved on read paths.
	Achievement Achievement
}

// NewGrant creates a grant with validated keys.
func NewGrant(learnerID, achievementID string, at time.Time) (*Grant, error) {
	if learnerID == "" {
		return nil, errors.New("grant: learner id is required")
	}
	if achievementID == "" {
		return nil, errors.New("grant: achievement id is required")
	}

	return &Grant{
		LearnerID:     learnerID,
		AchievementID: achievementID,
		AchievedAt:    at,
	}, nil
}

// String returns a string representation for logging.
func (g *Grant) String() string {
	return fmt.Sprintf("Grant{Learner: %s, Achievement: %s}", g.LearnerID, g.AchievementID)
}

// ══════════════════════════════════════════════════════════════════════════════
// ELIGIBILITY
// ══════════════════════════════════════════════════════════════════════════════

// NewlyEligible computes the set-difference between achievements whose
// threshold the points satisfy and those already granted. It is a pure
// function; the durable evaluator runs the same set-difference inside one
// SQL statement so no read race can slip between "eligible" and "granted".
func NewlyEligible(points learner.Points, all []Achievement, granted map[string]bool) []Achievement {
	var eligible []Achievement
	for _, a := range all {
		if !a.EligibleAt(points) {
			continue
		}
		if granted[a.ID] {
			continue
		}
		eligible = append(eligible, a)
	}
	return eligible
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrAchievementNotFound - no achievement with the given ID.
	ErrAchievementNotFound = errors.New("achievement not found")

	// ErrAlreadyGranted - the (learner, achievement) grant already exists.
	// The evaluator treats this as a normal outcome, not a failure.
	ErrAlreadyGranted = errors.New("achievement already granted")
)
