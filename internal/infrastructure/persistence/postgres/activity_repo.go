package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/activity"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY LOG REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ActivityRepository implements activity.Recorder and activity.Reader for
// PostgreSQL.
type ActivityRepository struct {
	q Querier
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(q Querier) *ActivityRepository {
	return &ActivityRepository{q: q}
}

// Record persists one audit-log entry.
func (r *ActivityRepository) Record(ctx context.Context, entry *activity.Entry) error {
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal activity details: %w", err)
	}

	query := `
		INSERT INTO activity_logs (learner_id, action, details, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.q.Exec(ctx, query, entry.LearnerID, string(entry.Action), detailsJSON, entry.CreatedAt)
	if err != nil {
		return storageError("Record", "insert activity entry", err)
	}

	return nil
}

// RecentFor returns the newest entries for a learner, most recent first.
func (r *ActivityRepository) RecentFor(ctx context.Context, learnerID string, limit int) ([]*activity.Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, learner_id, action, details, created_at
		FROM activity_logs
		WHERE learner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, learnerID, limit)
	if err != nil {
		return nil, storageError("RecentFor", "query activity log", err)
	}
	defer rows.Close()

	var entries []*activity.Entry
	for rows.Next() {
		var (
			e           activity.Entry
			action      string
			detailsJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.LearnerID, &action, &detailsJSON, &e.CreatedAt); err != nil {
			return nil, storageError("RecentFor", "scan activity entry", err)
		}

		e.Action = activity.Action(action)
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &e.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal activity details: %w", err)
			}
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// CountSince counts a learner's entries since the given time.
func (r *ActivityRepository) CountSince(ctx context.Context, learnerID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM activity_logs
		WHERE learner_id = $1 AND created_at >= $2
	`

	var count int
	if err := r.q.QueryRow(ctx, query, learnerID, since).Scan(&count); err != nil {
		return 0, storageError("CountSince", "count activity entries", err)
	}

	return count, nil
}
