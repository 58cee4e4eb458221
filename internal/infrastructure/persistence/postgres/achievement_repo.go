package postgres

import (
	"context"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/achievement"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements achievement.Repository and
// achievement.Evaluator for PostgreSQL.
type AchievementRepository struct {
	q Querier
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(q Querier) *AchievementRepository {
	return &AchievementRepository{q: q}
}

// WithQuerier returns a copy bound to another Querier.
func (r *AchievementRepository) WithQuerier(q Querier) *AchievementRepository {
	return &AchievementRepository{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// ListAll returns every achievement definition ordered by threshold.
func (r *AchievementRepository) ListAll(ctx context.Context) ([]achievement.Achievement, error) {
	query := `
		SELECT id, name, description, icon, points_required
		FROM achievements
		ORDER BY points_required ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, storageError("ListAll", "query achievements", err)
	}
	defer rows.Close()

	var achievements []achievement.Achievement
	for rows.Next() {
		var (
			a         achievement.Achievement
			threshold int
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &threshold); err != nil {
			return nil, storageError("ListAll", "scan achievement row", err)
		}
		a.PointsRequired = learner.Points(threshold)
		achievements = append(achievements, a)
	}

	return achievements, rows.Err()
}

// GrantsFor returns the learner's grants, newest first.
func (r *AchievementRepository) GrantsFor(ctx context.Context, learnerID string) ([]achievement.Grant, error) {
	query := `
		SELECT g.learner_id, g.achievement_id, g.achieved_at,
			   a.id, a.name, a.description, a.icon, a.points_required
		FROM achievement_grants g
		JOIN achievements a ON a.id = g.achievement_id
		WHERE g.learner_id = $1
		ORDER BY g.achieved_at DESC
	`

	rows, err := r.q.Query(ctx, query, learnerID)
	if err != nil {
		return nil, storageError("GrantsFor", "query grants", err)
	}
	defer rows.Close()

	var grants []achievement.Grant
	for rows.Next() {
		var (
			g         achievement.Grant
			threshold int
		)
		err := rows.Scan(
			&g.LearnerID, &g.AchievementID, &g.AchievedAt,
			&g.Achievement.ID, &g.Achievement.Name, &g.Achievement.Description,
			&g.Achievement.Icon, &threshold,
		)
		if err != nil {
			return nil, storageError("GrantsFor", "scan grant row", err)
		}
		g.Achievement.PointsRequired = learner.Points(threshold)
		grants = append(grants, g)
	}

	return grants, rows.Err()
}

// HasGrant reports whether the learner holds the achievement.
func (r *AchievementRepository) HasGrant(ctx context.Context, learnerID, achievementID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM achievement_grants
			WHERE learner_id = $1 AND achievement_id = $2
		)
	`

	var has bool
	if err := r.q.QueryRow(ctx, query, learnerID, achievementID).Scan(&has); err != nil {
		return false, storageError("HasGrant", "check grant", err)
	}

	return has, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Evaluation
// ─────────────────────────────────────────────────────────────────────────────

// Evaluate inserts grants for every achievement the learner's current points
// make them eligible for and that they do not hold yet, in one statement.
// The eligible-minus-granted set-difference and the inserts happen atomically,
// so no race between reading grants and writing them exists; inserts that
// still collide with a concurrent evaluation fall into ON CONFLICT DO NOTHING
// and are excluded from the RETURNING set.
func (r *AchievementRepository) Evaluate(ctx context.Context, learnerID string, at time.Time) ([]achievement.Achievement, error) {
	query := `
		WITH inserted AS (
			INSERT INTO achievement_grants (learner_id, achievement_id, achieved_at)
			SELECT l.id, a.id, $2
			FROM learners l
			CROSS JOIN achievements a
			WHERE l.id = $1
			  AND a.points_required <= l.points
			ON CONFLICT (learner_id, achievement_id) DO NOTHING
			RETURNING achievement_id
		)
		SELECT a.id, a.name, a.description, a.icon, a.points_required
		FROM inserted i
		JOIN achievements a ON a.id = i.achievement_id
		ORDER BY a.points_required ASC
	`

	rows, err := r.q.Query(ctx, query, learnerID, at)
	if err != nil {
		return nil, storageError("Evaluate", "insert eligible grants", err)
	}
	defer rows.Close()

	var unlocked []achievement.Achievement
	for rows.Next() {
		var (
			a         achievement.Achievement
			threshold int
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &threshold); err != nil {
			return nil, storageError("Evaluate", "scan unlocked achievement", err)
		}
		a.PointsRequired = learner.Points(threshold)
		unlocked = append(unlocked, a)
	}

	return unlocked, rows.Err()
}
