// Package main seeds the database with the default achievement catalog and a
// demo course setup for local development. Safe to run repeatedly: every
// insert is idempotent.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/learnhub-backend/config"
	"github.com/learnhub/learnhub-backend/internal/domain/achievement"
	"github.com/learnhub/learnhub-backend/internal/infrastructure/persistence/postgres"
	"github.com/learnhub/learnhub-backend/pkg/logger"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Default()

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	log.Info("running migrations")
	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("seeding achievements")
	if err := seedAchievements(ctx, conn); err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}

	log.Info("seeding demo courses")
	if err := seedCourses(ctx, conn); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	log.Info("seeding demo learners")
	if err := seedLearners(ctx, conn); err != nil {
		return fmt.Errorf("failed to seed learners: %w", err)
	}

	log.Info("seed complete")
	return nil
}

// seedAchievements inserts the default achievement catalog.
func seedAchievements(ctx context.Context, conn *postgres.Connection) error {
	query := `
		INSERT INTO achievements (name, description, icon, points_required)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
		    icon = EXCLUDED.icon,
		    points_required = EXCLUDED.points_required
	`

	for _, a := range achievement.DefaultAchievements() {
		if _, err := conn.Exec(ctx, query, a.Name, a.Description, a.Icon, int(a.PointsRequired)); err != nil {
			return fmt.Errorf("achievement %q: %w", a.Name, err)
		}
	}
	return nil
}

// demoCourse describes one seeded course with its lessons.
type demoCourse struct {
	title      string
	difficulty string
	lessons    []string
}

var demoCourses = []demoCourse{
	{
		title:      "Go Fundamentals",
		difficulty: "beginner",
		lessons:    []string{"Hello, World", "Variables and Types", "Control Flow", "Functions", "Structs and Methods"},
	},
	{
		title:      "Concurrent Go",
		difficulty: "intermediate",
		lessons:    []string{"Goroutines", "Channels", "Select", "Context", "Worker Pools"},
	},
	{
		title:      "Distributed Systems in Go",
		difficulty: "advanced",
		lessons:    []string{"Consensus Basics", "Replication", "Partitioning", "Failure Detection"},
	},
}

// seedCourses inserts the demo course catalog with ordered lessons.
func seedCourses(ctx context.Context, conn *postgres.Connection) error {
	courseQuery := `
		INSERT INTO courses (title, description, difficulty)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM courses WHERE title = $1)
	`
	lessonQuery := `
		INSERT INTO lessons (course_id, title, sort_order)
		SELECT c.id, $2, $3
		FROM courses c
		WHERE c.title = $1
		ON CONFLICT (course_id, sort_order) DO NOTHING
	`

	for _, course := range demoCourses {
		description := fmt.Sprintf("A %s-level course with %d lessons.", course.difficulty, len(course.lessons))
		if _, err := conn.Exec(ctx, courseQuery, course.title, description, course.difficulty); err != nil {
			return fmt.Errorf("course %q: %w", course.title, err)
		}
		for i, lesson := range course.lessons {
			if _, err := conn.Exec(ctx, lessonQuery, course.title, lesson, i+1); err != nil {
				return fmt.Errorf("lesson %q: %w", lesson, err)
			}
		}
	}
	return nil
}

// demoLearner describes one seeded account.
type demoLearner struct {
	username    string
	displayName string
	role        string
}

var demoLearners = []demoLearner{
	{username: "alice", displayName: "Alice Chen", role: "student"},
	{username: "bob", displayName: "Bob Myers", role: "student"},
	{username: "carol", displayName: "Carol Diaz", role: "student"},
	{username: "prof_knuth", displayName: "Prof. Knuth", role: "instructor"},
}

// seedLearners inserts demo accounts and enrolls the students into every
// demo course. The shared demo password is "learnhub".
func seedLearners(ctx context.Context, conn *postgres.Connection) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("learnhub"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	learnerQuery := `
		INSERT INTO learners (username, display_name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING
	`
	enrollQuery := `
		INSERT INTO enrollments (learner_id, course_id)
		SELECT l.id, c.id
		FROM learners l
		CROSS JOIN courses c
		WHERE l.username = $1
		ON CONFLICT (learner_id, course_id) DO NOTHING
	`

	for _, dl := range demoLearners {
		if _, err := conn.Exec(ctx, learnerQuery, dl.username, dl.displayName, string(hash), dl.role); err != nil {
			return fmt.Errorf("learner %q: %w", dl.username, err)
		}
		if dl.role != "student" {
			continue
		}
		if _, err := conn.Exec(ctx, enrollQuery, dl.username); err != nil {
			return fmt.Errorf("enrollment for %q: %w", dl.username, err)
		}
	}
	return nil
}
