// Package learner contains the domain model of a LearnHub learner.
// This is the core of the progression engine - no external dependencies here.
package learner

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Points represents a learner's reward points. Points only ever grow, and
// only through the reward path.
type Points int

// IsValid checks that Points is non-negative.
func (p Points) IsValid() bool {
	return p >= 0
}

// Add adds a delta to the points total.
func (p Points) Add(delta Points) Points {
	return p + delta
}

// Experience represents cumulative experience. In the current policy it moves
// in lockstep with Points; it stays a separate counter because Level is
// derived from experience alone.
type Experience int

// IsValid checks that Experience is non-negative.
func (e Experience) IsValid() bool {
	return e >= 0
}

// Add adds a delta to the experience total.
func (e Experience) Add(delta Experience) Experience {
	return e + delta
}

// Level represents a learner's level, derived from experience.
type Level int

// IsValid checks that the level is at least 1.
func (l Level) IsValid() bool {
	return l >= 1
}

// LevelFromExperience derives the level from cumulative experience.
// Formula: floor(1 + sqrt(experience) / 10). It is a pure function so the
// level can be re-derived from experience at any time; a missed incremental
// update can never leave the level permanently wrong.
func LevelFromExperience(exp Experience) Level {
	if exp < 0 {
		return 1
	}
	return Level(math.Floor(1 + math.Sqrt(float64(exp))/10))
}

// ══════════════════════════════════════════════════════════════════════════════
// DIFFICULTY & REWARD POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Difficulty classifies a course by how demanding it is. The difficulty is the
// only lesson attribute the reward policy looks at.
type Difficulty string

const (
	// DifficultyBeginner - introductory material.
	DifficultyBeginner Difficulty = "beginner"
	// DifficultyIntermediate - material assuming the basics.
	DifficultyIntermediate Difficulty = "intermediate"
	// DifficultyAdvanced - the hardest tier.
	DifficultyAdvanced Difficulty = "advanced"
)

// IsValid checks that the difficulty is one of the known tiers.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// String returns the string representation of the difficulty.
func (d Difficulty) String() string {
	return string(d)
}

// RewardTable maps course difficulty to the points awarded per completed
// lesson. The values are policy constants, configurable at startup.
type RewardTable map[Difficulty]Points

// DefaultRewardTable returns the standard reward policy.
func DefaultRewardTable() RewardTable {
	return RewardTable{
		DifficultyBeginner:     50,
		DifficultyIntermediate: 100,
		DifficultyAdvanced:     150,
	}
}

// RewardFor returns the reward for a difficulty tier. Unknown difficulties
// are rejected before any write happens.
func (t RewardTable) RewardFor(d Difficulty) (Points, error) {
	if !d.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, d)
	}
	reward, ok := t[d]
	if !ok {
		return 0, fmt.Errorf("%w: %q has no reward configured", ErrUnknownDifficulty, d)
	}
	return reward, nil
}

// Validate checks that the table covers every known tier with positive rewards.
func (t RewardTable) Validate() error {
	for _, d := range []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced} {
		reward, ok := t[d]
		if !ok {
			return fmt.Errorf("reward table: missing tier %q", d)
		}
		if reward <= 0 {
			return fmt.Errorf("reward table: tier %q must have a positive reward", d)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: LEARNER
// ══════════════════════════════════════════════════════════════════════════════

// Learner is the progression-relevant slice of a platform user: identity plus
// the mutable counters the progression engine owns.
type Learner struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// Username - unique login name, also the leaderboard tie-break key.
	Username string

	// DisplayName - name shown on leaderboards and dashboards.
	DisplayName string

	// Points - current reward points.
	Points Points

	// Experience - cumulative experience; Level is derived from it.
	Experience Experience

	// Level - current level. Invariant: Level == LevelFromExperience(Experience).
	Level Level

	// Role - platform role; only "student" accounts rank on the leaderboard.
	Role string

	// Active - inactive accounts keep their state but drop off the leaderboard.
	Active bool

	// CreatedAt - when the account was created.
	CreatedAt time.Time

	// UpdatedAt - time of the last progression update.
	UpdatedAt time.Time
}

// RoleStudent is the role eligible for ranking.
const RoleStudent = "student"

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrLearnerNotFound - no learner with the given ID.
	ErrLearnerNotFound = errors.New("learner not found")

	// ErrLearnerAlreadyExists - a learner with the same ID or username exists.
	ErrLearnerAlreadyExists = errors.New("learner already exists")

	// ErrInvalidUsername - username must be 2-50 chars without whitespace.
	ErrInvalidUsername = errors.New("invalid username: must be 2-50 chars without whitespace")

	// ErrInvalidPoints - points must be non-negative.
	ErrInvalidPoints = errors.New("invalid points: must be non-negative")

	// ErrInvalidExperience - experience must be non-negative.
	ErrInvalidExperience = errors.New("invalid experience: must be non-negative")

	// ErrUnknownDifficulty - difficulty outside the known tiers.
	ErrUnknownDifficulty = errors.New("unknown difficulty")

	// ErrLevelDrift - stored level disagrees with the derived level.
	ErrLevelDrift = errors.New("level does not match derived level")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewLearnerParams contains the parameters to create a learner.
type NewLearnerParams struct {
	ID          string
	Username    string
	DisplayName string
	Role        string
}

// NewLearner creates a learner with validated fields and zeroed progression.
func NewLearner(params NewLearnerParams) (*Learner, error) {
	if params.ID == "" {
		return nil, errors.New("learner id is required")
	}

	username := strings.TrimSpace(params.Username)
	if len(username) < 2 || len(username) > 50 || strings.ContainsAny(username, " \t\n\r") {
		return nil, ErrInvalidUsername
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		displayName = username
	}

	role := params.Role
	if role == "" {
		role = RoleStudent
	}

	now := time.Now().UTC()

	return &Learner{
		ID:          params.ID,
		Username:    username,
		DisplayName: displayName,
		Points:      0,
		Experience:  0,
		Level:       LevelFromExperience(0),
		Role:        role,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// NewTotals is the post-reward state of a learner's counters.
type NewTotals struct {
	Points     Points
	Experience Experience
	Level      Level
}

// ApplyReward applies a reward delta to the in-memory entity and returns the
// new totals. Persistence uses a single atomic SQL statement instead; this
// method exists so domain logic and tests can reason about the same math.
func (l *Learner) ApplyReward(delta Points) (NewTotals, error) {
	if delta < 0 {
		return NewTotals{}, ErrInvalidPoints
	}

	l.Points = l.Points.Add(delta)
	l.Experience = l.Experience.Add(Experience(delta))
	l.Level = LevelFromExperience(l.Experience)
	l.UpdatedAt = time.Now().UTC()

	return NewTotals{Points: l.Points, Experience: l.Experience, Level: l.Level}, nil
}

// CheckInvariants verifies the structural invariants of the progression state.
func (l *Learner) CheckInvariants() error {
	if !l.Points.IsValid() {
		return ErrInvalidPoints
	}
	if !l.Experience.IsValid() {
		return ErrInvalidExperience
	}
	if derived := LevelFromExperience(l.Experience); l.Level != derived {
		return fmt.Errorf("%w: stored %d, derived %d", ErrLevelDrift, l.Level, derived)
	}
	return nil
}

// Rankable reports whether the learner belongs on the leaderboard.
func (l *Learner) Rankable() bool {
	return l.Active && l.Role == RoleStudent
}

// String returns a string representation for logging.
func (l *Learner) String() string {
	return fmt.Sprintf(
		"Learner{ID: %s, Username: %s, Points: %d, Level: %d}",
		l.ID, l.Username, l.Points, l.Level,
	)
}

// Clone creates a copy of the learner.
func (l *Learner) Clone() *Learner {
	if l == nil {
		return nil
	}
	clone := *l
	return &clone
}
