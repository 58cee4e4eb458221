package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
)

func TestDefaultAchievements(t *testing.T) {
	ladder := DefaultAchievements()
	require.Len(t, ladder, 5)

	// Thresholds form a strictly increasing ladder.
	for i := 1; i < len(ladder); i++ {
		assert.Greater(t, ladder[i].PointsRequired, ladder[i-1].PointsRequired)
	}

	assert.Equal(t, "Bronze Star", ladder[0].Name)
	assert.Equal(t, learner.Points(500), ladder[0].PointsRequired)
	assert.Equal(t, "Diamond Trophy", ladder[4].Name)
	assert.Equal(t, learner.Points(20000), ladder[4].PointsRequired)
}

func TestEligibleAt(t *testing.T) {
	a := Achievement{Name: "Bronze Star", PointsRequired: 500}

	assert.False(t, a.EligibleAt(499))
	assert.True(t, a.EligibleAt(500), "threshold is inclusive")
	assert.True(t, a.EligibleAt(501))
}

func TestNewlyEligible(t *testing.T) {
	all := []Achievement{
		{ID: "a1", Name: "Bronze Star", PointsRequired: 500},
		{ID: "a2", Name: "Silver Shield", PointsRequired: 1000},
		{ID: "a3", Name: "Golden Crown", PointsRequired: 5000},
	}

	t.Run("nothing eligible below first threshold", func(t *testing.T) {
		assert.Empty(t, NewlyEligible(499, all, nil))
	})

	t.Run("crossing two thresholds at once grants both", func(t *testing.T) {
		got := NewlyEligible(1200, all, nil)
		require.Len(t, got, 2)
		assert.Equal(t, "a1", got[0].ID)
		assert.Equal(t, "a2", got[1].ID)
	})

	t.Run("already granted achievements are excluded", func(t *testing.T) {
		got := NewlyEligible(1200, all, map[string]bool{"a1": true})
		require.Len(t, got, 1)
		assert.Equal(t, "a2", got[0].ID)
	})

	t.Run("fully granted learner gets nothing new", func(t *testing.T) {
		granted := map[string]bool{"a1": true, "a2": true, "a3": true}
		assert.Empty(t, NewlyEligible(20000, all, granted))
	})
}

func TestNewGrant(t *testing.T) {
	now := time.Now()

	g, err := NewGrant("learner-1", "a1", now)
	require.NoError(t, err)
	assert.Equal(t, "learner-1", g.LearnerID)
	assert.Equal(t, "a1", g.AchievementID)
	assert.Equal(t, now, g.AchievedAt)

	_, err = NewGrant("", "a1", now)
	assert.Error(t, err)

	_, err = NewGrant("learner-1", "", now)
	assert.Error(t, err)
}
