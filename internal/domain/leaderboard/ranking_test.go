package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
)

type member struct {
	id       string
	username string
	points   int
}

func population(members ...member) []*learner.Learner {
	out := make([]*learner.Learner, 0, len(members))
	for _, s := range members {
		out = append(out, &learner.Learner{
			ID:       s.id,
			Username: s.username,
			Points:   learner.Points(s.points),
			Role:     learner.RoleStudent,
			Active:   true,
		})
	}
	return out
}

func TestFromPopulation_Ordering(t *testing.T) {
	r := FromPopulation(population(
		member{"l1", "carol", 300},
		member{"l2", "alice", 500},
		member{"l3", "bob", 400},
	))

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].Username)
	assert.Equal(t, "bob", all[1].Username)
	assert.Equal(t, "carol", all[2].Username)
	assert.Equal(t, Rank(1), all[0].Rank)
	assert.Equal(t, Rank(2), all[1].Rank)
	assert.Equal(t, Rank(3), all[2].Rank)
}

func TestFromPopulation_TieBreakByUsername(t *testing.T) {
	r := FromPopulation(population(
		member{"l1", "zoe", 400},
		member{"l2", "anna", 400},
		member{"l3", "mike", 400},
	))

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "anna", all[0].Username)
	assert.Equal(t, "mike", all[1].Username)
	assert.Equal(t, "zoe", all[2].Username)
}

func TestSort_CompetitionRanking(t *testing.T) {
	// Two learners tied at the top share rank 1; the next distinct score
	// starts at rank 3, not 2.
	r := FromPopulation(population(
		member{"l1", "alice", 500},
		member{"l2", "bob", 500},
		member{"l3", "carol", 400},
		member{"l4", "dave", 400},
		member{"l5", "erin", 300},
	))

	all := r.All()
	require.Len(t, all, 5)
	assert.Equal(t, Rank(1), all[0].Rank)
	assert.Equal(t, Rank(1), all[1].Rank)
	assert.Equal(t, Rank(3), all[2].Rank)
	assert.Equal(t, Rank(3), all[3].Rank)
	assert.Equal(t, Rank(5), all[4].Rank)
}

func TestAdd_DuplicateLearner(t *testing.T) {
	r := NewRanking()
	require.NoError(t, r.Add(&Entry{LearnerID: "l1", Username: "alice"}))

	assert.ErrorIs(t, r.Add(&Entry{LearnerID: "l1", Username: "alice"}), ErrDuplicateLearner)
	assert.ErrorIs(t, r.Add(nil), ErrNilEntry)
}

func TestStandingOf(t *testing.T) {
	r := FromPopulation(population(
		member{"l1", "alice", 500},
		member{"l2", "bob", 400},
		member{"l3", "carol", 300},
	))

	standing, err := r.StandingOf("l2")
	require.NoError(t, err)
	assert.Equal(t, Rank(2), standing.Rank)
	assert.Equal(t, learner.Points(400), standing.Points)
	assert.Equal(t, 3, standing.Of)

	_, err = r.StandingOf("unknown")
	assert.ErrorIs(t, err, ErrLearnerNotRanked)
}

func TestTop(t *testing.T) {
	r := FromPopulation(population(
		member{"l1", "alice", 500},
		member{"l2", "bob", 400},
		member{"l3", "carol", 300},
	))

	top := r.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "alice", top[0].Username)
	assert.Equal(t, "bob", top[1].Username)

	assert.Len(t, r.Top(10), 3, "n larger than population returns everything")
	assert.Nil(t, r.Top(0))
}

func TestStatistics(t *testing.T) {
	r := FromPopulation(population(
		member{"l1", "alice", 600},
		member{"l2", "bob", 400},
		member{"l3", "carol", 200},
	))

	assert.Equal(t, learner.Points(400), r.AveragePoints())
	assert.Equal(t, learner.Points(400), r.MedianPoints())
	assert.Equal(t, 3, r.Count())

	empty := NewRanking()
	assert.Equal(t, learner.Points(0), empty.AveragePoints())
	assert.Equal(t, learner.Points(0), empty.MedianPoints())
}
