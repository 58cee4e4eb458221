package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progress.Store for PostgreSQL.
type ProgressRepository struct {
	q Querier
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(q Querier) *ProgressRepository {
	return &ProgressRepository{q: q}
}

// WithQuerier returns a copy bound to another Querier.
func (r *ProgressRepository) WithQuerier(q Querier) *ProgressRepository {
	return &ProgressRepository{q: q}
}

// RecordAccess upserts the (learner, lesson) record with a fresh access time.
func (r *ProgressRepository) RecordAccess(ctx context.Context, learnerID, lessonID, courseID string, at time.Time) error {
	query := `
		INSERT INTO lesson_progress (learner_id, lesson_id, course_id, completed, last_accessed_at)
		VALUES ($1, $2, $3, FALSE, $4)
		ON CONFLICT (learner_id, lesson_id)
		DO UPDATE SET last_accessed_at = EXCLUDED.last_accessed_at
	`

	_, err := r.q.Exec(ctx, query, learnerID, lessonID, courseID, at)
	if err != nil {
		return storageError("RecordAccess", "upsert access record", err)
	}

	return nil
}

// MarkCompleted upserts the record as completed and reports whether it was
// already completed. The completion columns are guarded by "WHERE NOT
// completed", so of N concurrent submissions exactly one observes the
// transition; the rest see AlreadyCompleted and owe no reward.
func (r *ProgressRepository) MarkCompleted(ctx context.Context, learnerID, lessonID, courseID string, at time.Time, score *int) (progress.TransitionResult, error) {
	query := `
		INSERT INTO lesson_progress (learner_id, lesson_id, course_id, completed, score, last_accessed_at, completed_at)
		VALUES ($1, $2, $3, TRUE, $5, $4, $4)
		ON CONFLICT (learner_id, lesson_id)
		DO UPDATE SET completed = TRUE,
					  score = COALESCE(EXCLUDED.score, lesson_progress.score),
					  completed_at = EXCLUDED.completed_at,
					  last_accessed_at = EXCLUDED.last_accessed_at
		WHERE NOT lesson_progress.completed
	`

	tag, err := r.q.Exec(ctx, query, learnerID, lessonID, courseID, at, score)
	if err != nil {
		return progress.TransitionResult{}, storageError("MarkCompleted", "flip completion flag", err)
	}

	// Zero affected rows means the guard rejected the update: the record was
	// already completed. Refresh the access time separately in that case.
	if tag.RowsAffected() == 0 {
		touch := `
			UPDATE lesson_progress
			SET last_accessed_at = $3
			WHERE learner_id = $1 AND lesson_id = $2
		`
		if _, err := r.q.Exec(ctx, touch, learnerID, lessonID, at); err != nil {
			return progress.TransitionResult{}, storageError("MarkCompleted", "touch completed record", err)
		}
		return progress.TransitionResult{AlreadyCompleted: true}, nil
	}

	return progress.TransitionResult{AlreadyCompleted: false}, nil
}

// Get returns the completion record for the pair, or nil when absent.
func (r *ProgressRepository) Get(ctx context.Context, learnerID, lessonID string) (*progress.CompletionRecord, error) {
	query := `
		SELECT learner_id, lesson_id, course_id, completed, score, last_accessed_at, completed_at
		FROM lesson_progress
		WHERE learner_id = $1 AND lesson_id = $2
	`

	var rec progress.CompletionRecord
	err := r.q.QueryRow(ctx, query, learnerID, lessonID).Scan(
		&rec.LearnerID,
		&rec.LessonID,
		&rec.CourseID,
		&rec.Completed,
		&rec.Score,
		&rec.LastAccessedAt,
		&rec.CompletedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, storageError("Get", "read completion record", err)
	}

	return &rec, nil
}

// IsCompleted reports whether the learner has completed the lesson.
func (r *ProgressRepository) IsCompleted(ctx context.Context, learnerID, lessonID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM lesson_progress
			WHERE learner_id = $1 AND lesson_id = $2 AND completed
		)
	`

	var completed bool
	if err := r.q.QueryRow(ctx, query, learnerID, lessonID).Scan(&completed); err != nil {
		return false, storageError("IsCompleted", "check completion flag", err)
	}

	return completed, nil
}

// CourseSummary aggregates completion state for one learner in one course.
// Total counts active lessons in the catalog, not rows the learner has opened,
// so an untouched course reports 0 of N rather than 0 of 0.
func (r *ProgressRepository) CourseSummary(ctx context.Context, learnerID, courseID string) (*progress.CourseSummary, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(p.lesson_id) FILTER (WHERE p.completed) AS completed,
			COALESCE(AVG(p.score) FILTER (WHERE p.completed AND p.score IS NOT NULL), 0) AS avg_score
		FROM lessons l
		LEFT JOIN lesson_progress p
			ON p.lesson_id = l.id AND p.learner_id = $1
		WHERE l.course_id = $2 AND l.is_active
	`

	summary := progress.CourseSummary{CourseID: courseID, LearnerID: learnerID}
	err := r.q.QueryRow(ctx, query, learnerID, courseID).Scan(
		&summary.TotalLessons,
		&summary.CompletedLessons,
		&summary.AverageScore,
	)
	if err != nil {
		return nil, storageError("CourseSummary", "aggregate course summary", err)
	}

	return &summary, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CatalogRepository implements progress.Catalog for PostgreSQL.
type CatalogRepository struct {
	q Querier
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(q Querier) *CatalogRepository {
	return &CatalogRepository{q: q}
}

// WithQuerier returns a copy bound to another Querier.
func (r *CatalogRepository) WithQuerier(q Querier) *CatalogRepository {
	return &CatalogRepository{q: q}
}

const lessonColumns = `
	l.id, l.course_id, l.title, l.sort_order, l.is_active,
	c.id, c.title, c.difficulty, c.is_active
`

// GetLesson returns an active lesson joined with its course.
func (r *CatalogRepository) GetLesson(ctx context.Context, lessonID string) (*progress.Lesson, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM lessons l
		JOIN courses c ON c.id = l.course_id
		WHERE l.id = $1 AND l.is_active AND c.is_active
	`, lessonColumns)

	return r.scanLesson(ctx, query, lessonID)
}

// PrecedingLesson returns the active lesson immediately before the given one
// in course order, or nil when the lesson is first.
func (r *CatalogRepository) PrecedingLesson(ctx context.Context, lesson *progress.Lesson) (*progress.Lesson, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM lessons l
		JOIN courses c ON c.id = l.course_id
		WHERE l.course_id = $1 AND l.sort_order < $2 AND l.is_active
		ORDER BY l.sort_order DESC
		LIMIT 1
	`, lessonColumns)

	prev, err := r.scanLesson(ctx, query, lesson.CourseID, lesson.SortOrder)
	if err != nil {
		if errors.Is(err, progress.ErrLessonNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return prev, nil
}

// IsEnrolled reports whether the learner is enrolled in the course.
func (r *CatalogRepository) IsEnrolled(ctx context.Context, learnerID, courseID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM enrollments
			WHERE learner_id = $1 AND course_id = $2
		)
	`

	var enrolled bool
	if err := r.q.QueryRow(ctx, query, learnerID, courseID).Scan(&enrolled); err != nil {
		return false, storageError("IsEnrolled", "check enrollment", err)
	}

	return enrolled, nil
}

// CourseLessons returns the active lessons of a course in course order.
func (r *CatalogRepository) CourseLessons(ctx context.Context, courseID string) ([]*progress.Lesson, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM lessons l
		JOIN courses c ON c.id = l.course_id
		WHERE l.course_id = $1 AND l.is_active
		ORDER BY l.sort_order ASC
	`, lessonColumns)

	rows, err := r.q.Query(ctx, query, courseID)
	if err != nil {
		return nil, storageError("CourseLessons", "query course lessons", err)
	}
	defer rows.Close()

	var lessons []*progress.Lesson
	for rows.Next() {
		var (
			l          progress.Lesson
			difficulty string
		)
		err := rows.Scan(
			&l.ID, &l.CourseID, &l.Title, &l.SortOrder, &l.Active,
			&l.Course.ID, &l.Course.Title, &difficulty, &l.Course.Active,
		)
		if err != nil {
			return nil, storageError("CourseLessons", "scan lesson row", err)
		}
		l.Course.Difficulty = learner.Difficulty(difficulty)
		lessons = append(lessons, &l)
	}

	return lessons, rows.Err()
}

func (r *CatalogRepository) scanLesson(ctx context.Context, query string, args ...interface{}) (*progress.Lesson, error) {
	var (
		l          progress.Lesson
		difficulty string
	)

	err := r.q.QueryRow(ctx, query, args...).Scan(
		&l.ID, &l.CourseID, &l.Title, &l.SortOrder, &l.Active,
		&l.Course.ID, &l.Course.Title, &difficulty, &l.Course.Active,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, progress.ErrLessonNotFound
		}
		return nil, storageError("scanLesson", "scan lesson row", err)
	}

	l.Course.Difficulty = learner.Difficulty(difficulty)
	return &l, nil
}
