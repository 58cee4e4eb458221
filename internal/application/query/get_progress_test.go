package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub-backend/internal/domain/achievement"
	"github.com/learnhub/learnhub-backend/internal/domain/activity"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeLearnerRepo struct {
	byID map[string]*learner.Learner
}

func (f *fakeLearnerRepo) Create(_ context.Context, l *learner.Learner) error {
	f.byID[l.ID] = l
	return nil
}

func (f *fakeLearnerRepo) GetByID(_ context.Context, id string) (*learner.Learner, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, learner.ErrLearnerNotFound
	}
	return l, nil
}

func (f *fakeLearnerRepo) GetByUsername(_ context.Context, username string) (*learner.Learner, error) {
	for _, l := range f.byID {
		if l.Username == username {
			return l, nil
		}
	}
	return nil, learner.ErrLearnerNotFound
}

func (f *fakeLearnerRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

type fakeProgressStore struct {
	summaries map[string]*progress.CourseSummary // learnerID|courseID
}

func (f *fakeProgressStore) RecordAccess(_ context.Context, _, _, _ string, _ time.Time) error {
	return nil
}

func (f *fakeProgressStore) MarkCompleted(_ context.Context, _, _, _ string, _ time.Time, _ *int) (progress.TransitionResult, error) {
	return progress.TransitionResult{}, nil
}

func (f *fakeProgressStore) Get(_ context.Context, _, _ string) (*progress.CompletionRecord, error) {
	return nil, nil
}

func (f *fakeProgressStore) IsCompleted(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (f *fakeProgressStore) CourseSummary(_ context.Context, learnerID, courseID string) (*progress.CourseSummary, error) {
	if s, ok := f.summaries[learnerID+"|"+courseID]; ok {
		return s, nil
	}
	return &progress.CourseSummary{CourseID: courseID, LearnerID: learnerID}, nil
}

type fakeAchievementRepo struct {
	grants map[string][]achievement.Grant
}

func (f *fakeAchievementRepo) ListAll(_ context.Context) ([]achievement.Achievement, error) {
	return achievement.DefaultAchievements(), nil
}

func (f *fakeAchievementRepo) GrantsFor(_ context.Context, learnerID string) ([]achievement.Grant, error) {
	return f.grants[learnerID], nil
}

func (f *fakeAchievementRepo) HasGrant(_ context.Context, learnerID, achievementID string) (bool, error) {
	for _, g := range f.grants[learnerID] {
		if g.AchievementID == achievementID {
			return true, nil
		}
	}
	return false, nil
}

type fakeActivityReader struct {
	entries []*activity.Entry
	today   int
}

func (f *fakeActivityReader) RecentFor(_ context.Context, learnerID string, limit int) ([]*activity.Entry, error) {
	var out []*activity.Entry
	for _, e := range f.entries {
		if e.LearnerID == learnerID {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeActivityReader) CountSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return f.today, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetProgress
// ─────────────────────────────────────────────────────────────────────────────

func newProgressFixture() (*fakeLearnerRepo, *fakeProgressStore, *fakeAchievementRepo) {
	learners := &fakeLearnerRepo{byID: map[string]*learner.Learner{
		"learner-1": {
			ID:       "learner-1",
			Username: "alice",
			Points:   750,
			Level:    3,
			Role:     learner.RoleStudent,
			Active:   true,
		},
	}}
	store := &fakeProgressStore{summaries: map[string]*progress.CourseSummary{
		"learner-1|course-1": {
			CourseID:         "course-1",
			LearnerID:        "learner-1",
			TotalLessons:     5,
			CompletedLessons: 3,
			AverageScore:     82.5,
		},
	}}
	achievements := &fakeAchievementRepo{grants: map[string][]achievement.Grant{
		"learner-1": {
			{
				LearnerID:     "learner-1",
				AchievementID: "ach-1",
				AchievedAt:    time.Now().UTC(),
				Achievement:   achievement.Achievement{ID: "ach-1", Name: "Bronze Star", PointsRequired: 500},
			},
		},
	}}
	return learners, store, achievements
}

func TestGetProgress_OverallOnly(t *testing.T) {
	learners, store, achievements := newProgressFixture()
	h := NewGetProgressHandler(learners, store, achievements, nil)

	result, err := h.Handle(context.Background(), GetProgressQuery{LearnerID: "learner-1"})
	require.NoError(t, err)

	assert.Equal(t, "alice", result.Learner.Username)
	assert.Nil(t, result.CourseSummary)
	require.Len(t, result.Achievements, 1)
	assert.Equal(t, "Bronze Star", result.Achievements[0].Achievement.Name)
}

func TestGetProgress_WithCourseBreakdown(t *testing.T) {
	learners, store, achievements := newProgressFixture()
	h := NewGetProgressHandler(learners, store, achievements, nil)

	result, err := h.Handle(context.Background(), GetProgressQuery{
		LearnerID: "learner-1",
		CourseID:  "course-1",
	})
	require.NoError(t, err)

	require.NotNil(t, result.CourseSummary)
	assert.Equal(t, 3, result.CourseSummary.CompletedLessons)
	assert.Equal(t, 5, result.CourseSummary.TotalLessons)
	assert.InDelta(t, 60.0, result.CourseSummary.PercentComplete(), 0.001)
}

func TestGetProgress_LearnerNotFound(t *testing.T) {
	learners, store, achievements := newProgressFixture()
	h := NewGetProgressHandler(learners, store, achievements, nil)

	_, err := h.Handle(context.Background(), GetProgressQuery{LearnerID: "ghost"})
	assert.ErrorIs(t, err, learner.ErrLearnerNotFound)
}

func TestGetProgressQuery_Validate(t *testing.T) {
	assert.NoError(t, GetProgressQuery{LearnerID: "l1"}.Validate())
	assert.Error(t, GetProgressQuery{}.Validate())
}

// ─────────────────────────────────────────────────────────────────────────────
// GetActivity
// ─────────────────────────────────────────────────────────────────────────────

func TestGetActivity_RecentEntries(t *testing.T) {
	learners, _, _ := newProgressFixture()
	now := time.Now().UTC()
	reader := &fakeActivityReader{
		entries: []*activity.Entry{
			{ID: 2, LearnerID: "learner-1", Action: "lesson_completed", CreatedAt: now},
			{ID: 1, LearnerID: "learner-1", Action: "lesson_accessed", CreatedAt: now.Add(-time.Hour)},
			{ID: 3, LearnerID: "learner-2", Action: "lesson_accessed", CreatedAt: now},
		},
		today: 2,
	}
	h := NewGetActivityHandler(reader, learners, nil)

	result, err := h.Handle(context.Background(), GetActivityQuery{LearnerID: "learner-1"})
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, activity.Action("lesson_completed"), result.Entries[0].Action)
	assert.Equal(t, 2, result.Today)
}

func TestGetActivity_LimitRespected(t *testing.T) {
	learners, _, _ := newProgressFixture()
	now := time.Now().UTC()
	reader := &fakeActivityReader{}
	for i := 0; i < 5; i++ {
		reader.entries = append(reader.entries, &activity.Entry{
			LearnerID: "learner-1",
			Action:    "lesson_accessed",
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	h := NewGetActivityHandler(reader, learners, nil)

	result, err := h.Handle(context.Background(), GetActivityQuery{LearnerID: "learner-1", Limit: 3})
	require.NoError(t, err)
	assert.Len(t, result.Entries, 3)
}

func TestGetActivity_LearnerNotFound(t *testing.T) {
	learners, _, _ := newProgressFixture()
	h := NewGetActivityHandler(&fakeActivityReader{}, learners, nil)

	_, err := h.Handle(context.Background(), GetActivityQuery{LearnerID: "ghost"})
	assert.ErrorIs(t, err, learner.ErrLearnerNotFound)
}

func TestGetActivityQuery_Validate(t *testing.T) {
	assert.NoError(t, GetActivityQuery{LearnerID: "l1"}.Validate())
	assert.NoError(t, GetActivityQuery{LearnerID: "l1", Limit: MaxActivitySize}.Validate())
	assert.Error(t, GetActivityQuery{}.Validate())
	assert.Error(t, GetActivityQuery{LearnerID: "l1", Limit: -1}.Validate())
	assert.Error(t, GetActivityQuery{LearnerID: "l1", Limit: MaxActivitySize + 1}.Validate())
}
