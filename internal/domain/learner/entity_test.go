package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromExperience(t *testing.T) {
	tests := []struct {
		exp  Experience
		want Level
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{2500, 6},
		{8100, 10},
		{10000, 11},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromExperience(tt.exp), "exp=%d", tt.exp)
	}

	// Negative experience clamps to level 1 instead of producing NaN.
	assert.Equal(t, Level(1), LevelFromExperience(-5))
}

func TestDefaultRewardTable(t *testing.T) {
	table := DefaultRewardTable()
	require.NoError(t, table.Validate())

	reward, err := table.RewardFor(DifficultyBeginner)
	require.NoError(t, err)
	assert.Equal(t, Points(50), reward)

	reward, err = table.RewardFor(DifficultyIntermediate)
	require.NoError(t, err)
	assert.Equal(t, Points(100), reward)

	reward, err = table.RewardFor(DifficultyAdvanced)
	require.NoError(t, err)
	assert.Equal(t, Points(150), reward)
}

func TestRewardTable_UnknownDifficulty(t *testing.T) {
	table := DefaultRewardTable()

	_, err := table.RewardFor("legendary")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)

	_, err = table.RewardFor("")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestRewardTable_Validate(t *testing.T) {
	missing := RewardTable{DifficultyBeginner: 50}
	assert.Error(t, missing.Validate())

	zero := RewardTable{
		DifficultyBeginner:     0,
		DifficultyIntermediate: 100,
		DifficultyAdvanced:     150,
	}
	assert.Error(t, zero.Validate())
}

func TestNewLearner(t *testing.T) {
	l, err := NewLearner(NewLearnerParams{
		ID:       "learner-1",
		Username: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", l.Username)
	assert.Equal(t, "alice", l.DisplayName, "display name defaults to username")
	assert.Equal(t, RoleStudent, l.Role)
	assert.True(t, l.Active)
	assert.Equal(t, Points(0), l.Points)
	assert.Equal(t, Level(1), l.Level)
	assert.NoError(t, l.CheckInvariants())
}

func TestNewLearner_InvalidUsername(t *testing.T) {
	cases := []string{"", "a", "has space", "tab\tname"}
	for _, username := range cases {
		_, err := NewLearner(NewLearnerParams{ID: "id", Username: username})
		assert.ErrorIs(t, err, ErrInvalidUsername, "username=%q", username)
	}
}

func TestNewLearner_RequiresID(t *testing.T) {
	_, err := NewLearner(NewLearnerParams{Username: "alice"})
	assert.Error(t, err)
}

func TestApplyReward(t *testing.T) {
	l, err := NewLearner(NewLearnerParams{ID: "learner-1", Username: "alice"})
	require.NoError(t, err)

	totals, err := l.ApplyReward(150)
	require.NoError(t, err)

	assert.Equal(t, Points(150), totals.Points)
	assert.Equal(t, Experience(150), totals.Experience)
	assert.Equal(t, Level(2), totals.Level, "150 xp crosses the level 2 boundary")
	assert.NoError(t, l.CheckInvariants())
}

func TestApplyReward_RejectsNegative(t *testing.T) {
	l, err := NewLearner(NewLearnerParams{ID: "learner-1", Username: "alice"})
	require.NoError(t, err)

	_, err = l.ApplyReward(-10)
	assert.ErrorIs(t, err, ErrInvalidPoints)
	assert.Equal(t, Points(0), l.Points, "failed reward leaves state untouched")
}

func TestCheckInvariants_LevelDrift(t *testing.T) {
	l, err := NewLearner(NewLearnerParams{ID: "learner-1", Username: "alice"})
	require.NoError(t, err)

	l.Experience = 10000
	l.Level = 3 // derived level is 11

	assert.ErrorIs(t, l.CheckInvariants(), ErrLevelDrift)
}

func TestRankable(t *testing.T) {
	student, _ := NewLearner(NewLearnerParams{ID: "s", Username: "student"})
	assert.True(t, student.Rankable())

	instructor, _ := NewLearner(NewLearnerParams{ID: "i", Username: "prof_knuth", Role: "instructor"})
	assert.False(t, instructor.Rankable())

	inactive, _ := NewLearner(NewLearnerParams{ID: "x", Username: "gone"})
	inactive.Active = false
	assert.False(t, inactive.Rankable())
}
