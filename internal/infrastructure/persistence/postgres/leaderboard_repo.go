package postgres

import (
	"context"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD POPULATION SOURCE
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRepository implements leaderboard.PopulationSource for
// PostgreSQL. It only reads; rank assignment happens in the domain so the
// tie-break and shared-rank rules live in exactly one place.
type LeaderboardRepository struct {
	q Querier
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(q Querier) *LeaderboardRepository {
	return &LeaderboardRepository{q: q}
}

// RankablePopulation returns the current snapshot of eligible learners:
// active accounts with the student role. The ORDER BY mirrors the ranking
// comparator (points descending, username ascending) and is served by the
// partial index on the same expression.
func (r *LeaderboardRepository) RankablePopulation(ctx context.Context) ([]*learner.Learner, error) {
	query := `
		SELECT id, username, display_name, role, is_active,
			   points, experience, level, created_at, updated_at
		FROM learners
		WHERE is_active = TRUE AND role = 'student'
		ORDER BY points DESC, username ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, storageError("RankablePopulation", "query rankable population", err)
	}
	defer rows.Close()

	var population []*learner.Learner
	for rows.Next() {
		var (
			l          learner.Learner
			points     int
			experience int
			level      int
		)
		err := rows.Scan(
			&l.ID, &l.Username, &l.DisplayName, &l.Role, &l.Active,
			&points, &experience, &level, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, storageError("RankablePopulation", "scan learner row", err)
		}
		l.Points = learner.Points(points)
		l.Experience = learner.Experience(experience)
		l.Level = learner.Level(level)
		population = append(population, &l)
	}

	return population, rows.Err()
}
