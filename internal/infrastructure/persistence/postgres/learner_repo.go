package postgres

import (
	"context"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LearnerRepository implements learner.Repository and learner.ScoreAccumulator
// for PostgreSQL. It operates on a Querier so the same repository runs against
// the pool or inside the completion transaction.
type LearnerRepository struct {
	q Querier
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(q Querier) *LearnerRepository {
	return &LearnerRepository{q: q}
}

// WithQuerier returns a copy of the repository bound to another Querier,
// typically an open transaction.
func (r *LearnerRepository) WithQuerier(q Querier) *LearnerRepository {
	return &LearnerRepository{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a new learner.
func (r *LearnerRepository) Create(ctx context.Context, l *learner.Learner) error {
	query := `
		INSERT INTO learners (
			id, username, display_name, role, is_active,
			points, experience, level, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.Exec(ctx, query,
		l.ID,
		l.Username,
		l.DisplayName,
		l.Role,
		l.Active,
		int(l.Points),
		int(l.Experience),
		int(l.Level),
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return learner.ErrLearnerAlreadyExists
		}
		return storageError("Create", "insert learner", err)
	}

	return nil
}

// GetByID returns a learner by internal ID.
func (r *LearnerRepository) GetByID(ctx context.Context, id string) (*learner.Learner, error) {
	query := `
		SELECT id, username, display_name, role, is_active,
			   points, experience, level, created_at, updated_at
		FROM learners
		WHERE id = $1
	`

	row := r.q.QueryRow(ctx, query, id)
	return r.scanLearner(row)
}

// GetByUsername returns a learner by username.
func (r *LearnerRepository) GetByUsername(ctx context.Context, username string) (*learner.Learner, error) {
	query := `
		SELECT id, username, display_name, role, is_active,
			   points, experience, level, created_at, updated_at
		FROM learners
		WHERE username = $1
	`

	row := r.q.QueryRow(ctx, query, username)
	return r.scanLearner(row)
}

// Exists checks whether a learner with the ID exists.
func (r *LearnerRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM learners WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, storageError("Exists", "check learner existence", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Score Accumulation
// ─────────────────────────────────────────────────────────────────────────────

// ApplyReward atomically adds delta to points and experience and recomputes
// the level from the post-update experience. The whole update is a single
// statement, so concurrent rewards for the same learner serialize on the row
// lock and both deltas land - no read-modify-write window exists.
func (r *LearnerRepository) ApplyReward(ctx context.Context, learnerID string, delta learner.Points) (*learner.NewTotals, error) {
	if delta < 0 {
		return nil, learner.ErrInvalidPoints
	}

	query := `
		UPDATE learners
		SET points = points + $2,
			experience = experience + $2,
			level = FLOOR(1 + SQRT(experience + $2) / 10),
			updated_at = NOW()
		WHERE id = $1
		RETURNING points, experience, level
	`

	var totals learner.NewTotals
	err := r.q.QueryRow(ctx, query, learnerID, int(delta)).Scan(
		&totals.Points,
		&totals.Experience,
		&totals.Level,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, learner.ErrLearnerNotFound
		}
		return nil, storageError("ApplyReward", "apply reward", err)
	}

	return &totals, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func (r *LearnerRepository) scanLearner(row pgx.Row) (*learner.Learner, error) {
	var (
		l          learner.Learner
		points     int
		experience int
		level      int
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(
		&l.ID,
		&l.Username,
		&l.DisplayName,
		&l.Role,
		&l.Active,
		&points,
		&experience,
		&level,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, learner.ErrLearnerNotFound
		}
		return nil, storageError("scanLearner", "scan learner row", err)
	}

	l.Points = learner.Points(points)
	l.Experience = learner.Experience(experience)
	l.Level = learner.Level(level)
	l.CreatedAt = createdAt
	l.UpdatedAt = updatedAt

	return &l, nil
}
