// Package http implements the REST API for the LearnHub progression engine.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/learnhub/learnhub-backend/internal/application/command"
	"github.com/learnhub/learnhub-backend/internal/application/query"
	"github.com/learnhub/learnhub-backend/internal/domain/achievement"
	"github.com/learnhub/learnhub-backend/internal/domain/leaderboard"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
	"github.com/learnhub/learnhub-backend/internal/domain/shared"
	"github.com/learnhub/learnhub-backend/pkg/logger"
	"github.com/learnhub/learnhub-backend/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Resource not found")
		return
	}

	info := map[string]interface{}{
		"name":        "LearnHub Progression API",
		"version":     "v1",
		"description": "REST API for the LearnHub gamification progression engine",
		"endpoints": map[string]string{
			"health":      "/health",
			"leaderboard": "/api/v1/leaderboard",
			"standing":    "/api/v1/learners/{id}/standing",
			"progress":    "/api/v1/learners/{id}/progress",
			"activity":    "/api/v1/learners/{id}/activity",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// leaderboardEntryDTO is the wire shape of one leaderboard row.
type leaderboardEntryDTO struct {
	Rank        int    `json:"rank"`
	LearnerID   string `json:"learner_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
	Level       int    `json:"level"`
}

func toLeaderboardDTO(entries []*leaderboard.Entry) []leaderboardEntryDTO {
	out := make([]leaderboardEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, leaderboardEntryDTO{
			Rank:        int(e.Rank),
			LearnerID:   e.LearnerID,
			Username:    e.Username,
			DisplayName: e.DisplayName,
			Points:      int(e.Points),
			Level:       int(e.Level),
		})
	}
	return out
}

// handleGetLeaderboard handles GET /api/v1/leaderboard
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := query.GetLeaderboardQuery{
		Limit:  getQueryParamInt(r, "limit", 0),
		Offset: getQueryParamInt(r, "offset", 0),
	}

	if err := q.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.Service.GetLeaderboard(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err, "failed to get leaderboard")
		return
	}

	meta := &ResponseMeta{
		TotalCount: result.Total,
		FromCache:  result.FromCache,
	}

	writeJSONWithMeta(w, r, http.StatusOK, toLeaderboardDTO(result.Entries), meta)
}

// leaderboardStatsDTO is the wire shape of the population aggregates.
type leaderboardStatsDTO struct {
	Total         int       `json:"total"`
	AveragePoints int       `json:"average_points"`
	MedianPoints  int       `json:"median_points"`
	TopPoints     int       `json:"top_points"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// handleGetLeaderboardStats handles GET /api/v1/leaderboard/stats
func (s *Server) handleGetLeaderboardStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Service.GetLeaderboardStats(r.Context(), query.GetLeaderboardStatsQuery{})
	if err != nil {
		s.writeDomainError(w, err, "failed to get leaderboard stats")
		return
	}

	writeJSON(w, http.StatusOK, leaderboardStatsDTO{
		Total:         result.Total,
		AveragePoints: int(result.AveragePoints),
		MedianPoints:  int(result.MedianPoints),
		TopPoints:     int(result.TopPoints),
		GeneratedAt:   result.GeneratedAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// learnerDTO is the wire shape of a learner account.
type learnerDTO struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Points      int       `json:"points"`
	Experience  int       `json:"experience"`
	Level       int       `json:"level"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toLearnerDTO(l *learner.Learner) learnerDTO {
	return learnerDTO{
		ID:          l.ID,
		Username:    l.Username,
		DisplayName: l.DisplayName,
		Points:      int(l.Points),
		Experience:  int(l.Experience),
		Level:       int(l.Level),
		Role:        l.Role,
		Active:      l.Active,
		CreatedAt:   l.CreatedAt,
	}
}

// registerLearnerRequest is the POST /api/v1/learners body.
type registerLearnerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// handleRegisterLearner handles POST /api/v1/learners
func (s *Server) handleRegisterLearner(w http.ResponseWriter, r *http.Request) {
	var req registerLearnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	cmd := command.RegisterLearnerCommand{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	}

	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.Service.RegisterLearner(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err, "failed to register learner")
		return
	}

	writeJSON(w, http.StatusCreated, toLearnerDTO(result.Learner))
}

// standingDTO is the wire shape of a learner's leaderboard standing.
type standingDTO struct {
	Rank   int `json:"rank"`
	Points int `json:"points"`
	Of     int `json:"of"`
}

// handleGetStanding handles GET /api/v1/learners/{id}/standing
func (s *Server) handleGetStanding(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	result, err := s.deps.Service.GetStanding(r.Context(), query.GetStandingQuery{LearnerID: learnerID})
	if err != nil {
		s.writeDomainError(w, err, "failed to get standing")
		return
	}

	meta := &ResponseMeta{FromCache: result.FromCache}
	writeJSONWithMeta(w, r, http.StatusOK, standingDTO{
		Rank:   int(result.Standing.Rank),
		Points: int(result.Standing.Points),
		Of:     result.Standing.Of,
	}, meta)
}

// courseSummaryDTO is the wire shape of a per-course progress summary.
type courseSummaryDTO struct {
	CourseID         string  `json:"course_id"`
	TotalLessons     int     `json:"total_lessons"`
	CompletedLessons int     `json:"completed_lessons"`
	PercentComplete  float64 `json:"percent_complete"`
	AverageScore     float64 `json:"average_score"`
}

// grantDTO is the wire shape of an unlocked achievement.
type grantDTO struct {
	AchievementID  string    `json:"achievement_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Icon           string    `json:"icon"`
	PointsRequired int       `json:"points_required"`
	AchievedAt     time.Time `json:"achieved_at"`
}

// progressDTO is the wire shape of the full progress report.
type progressDTO struct {
	Learner      learnerDTO        `json:"learner"`
	Course       *courseSummaryDTO `json:"course,omitempty"`
	Achievements []grantDTO        `json:"achievements"`
}

// handleGetProgress handles GET /api/v1/learners/{id}/progress
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	q := query.GetProgressQuery{
		LearnerID: learnerID,
		CourseID:  r.URL.Query().Get("course_id"),
	}

	result, err := s.deps.Service.GetProgress(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err, "failed to get progress")
		return
	}

	dto := progressDTO{
		Learner:      toLearnerDTO(result.Learner),
		Achievements: make([]grantDTO, 0, len(result.Achievements)),
	}
	if result.CourseSummary != nil {
		dto.Course = &courseSummaryDTO{
			CourseID:         result.CourseSummary.CourseID,
			TotalLessons:     result.CourseSummary.TotalLessons,
			CompletedLessons: result.CourseSummary.CompletedLessons,
			PercentComplete:  result.CourseSummary.PercentComplete(),
			AverageScore:     result.CourseSummary.AverageScore,
		}
	}
	for _, g := range result.Achievements {
		dto.Achievements = append(dto.Achievements, grantDTO{
			AchievementID:  g.AchievementID,
			Name:           g.Achievement.Name,
			Description:    g.Achievement.Description,
			Icon:           g.Achievement.Icon,
			PointsRequired: int(g.Achievement.PointsRequired),
			AchievedAt:     g.AchievedAt,
		})
	}

	writeJSON(w, http.StatusOK, dto)
}

// activityEntryDTO is the wire shape of one activity feed row.
type activityEntryDTO struct {
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	When      string                 `json:"when"`
}

// handleGetActivity handles GET /api/v1/learners/{id}/activity
func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	q := query.GetActivityQuery{
		LearnerID: learnerID,
		Limit:     getQueryParamInt(r, "limit", 0),
	}

	if err := q.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.Service.GetActivity(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err, "failed to get activity feed")
		return
	}

	entries := make([]activityEntryDTO, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, activityEntryDTO{
			Action:    string(e.Action),
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
			When:      timeutil.FormatRelative(e.CreatedAt),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"today":   result.Today,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSON HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// recordAccessRequest is the POST /api/v1/lessons/{id}/access body.
type recordAccessRequest struct {
	LearnerID string `json:"learner_id"`
}

// handleRecordAccess handles POST /api/v1/lessons/{id}/access
func (s *Server) handleRecordAccess(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("id")
	if lessonID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Lesson ID is required")
		return
	}

	var req recordAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	cmd := command.RecordAccessCommand{
		LearnerID:     req.LearnerID,
		LessonID:      lessonID,
		CorrelationID: getRequestID(r.Context()),
	}

	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.Service.RecordAccess(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err, "failed to record lesson access")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lesson_id":   result.Lesson.ID,
		"course_id":   result.Lesson.CourseID,
		"accessed_at": result.AccessedAt,
	})
}

// completeLessonRequest is the POST /api/v1/lessons/{id}/complete body.
type completeLessonRequest struct {
	LearnerID string `json:"learner_id"`
	Score     *int   `json:"score,omitempty"`
}

// achievementDTO is the wire shape of an achievement definition.
type achievementDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	PointsRequired int    `json:"points_required"`
}

// completeLessonResponse is the wire shape of a completion outcome.
type completeLessonResponse struct {
	AlreadyCompleted bool             `json:"already_completed"`
	PointsAwarded    int              `json:"points_awarded"`
	Points           int              `json:"points,omitempty"`
	Experience       int              `json:"experience,omitempty"`
	Level            int              `json:"level,omitempty"`
	LeveledUp        bool             `json:"leveled_up"`
	Unlocked         []achievementDTO `json:"unlocked"`
	CompletedAt      time.Time        `json:"completed_at"`
}

// handleCompleteLesson handles POST /api/v1/lessons/{id}/complete
func (s *Server) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("id")
	if lessonID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Lesson ID is required")
		return
	}

	var req completeLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	cmd := command.CompleteLessonCommand{
		LearnerID:     req.LearnerID,
		LessonID:      lessonID,
		Score:         req.Score,
		CorrelationID: getRequestID(r.Context()),
	}

	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.Service.CompleteLesson(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err, "failed to complete lesson")
		return
	}

	resp := completeLessonResponse{
		AlreadyCompleted: result.AlreadyCompleted,
		PointsAwarded:    int(result.PointsAwarded),
		LeveledUp:        result.LeveledUp,
		Unlocked:         make([]achievementDTO, 0, len(result.Unlocked)),
		CompletedAt:      result.CompletedAt,
	}
	if result.NewTotals != nil {
		resp.Points = int(result.NewTotals.Points)
		resp.Experience = int(result.NewTotals.Experience)
		resp.Level = int(result.NewTotals.Level)
	}
	for _, a := range result.Unlocked {
		resp.Unlocked = append(resp.Unlocked, achievementDTO{
			ID:             a.ID,
			Name:           a.Name,
			Description:    a.Description,
			Icon:           a.Icon,
			PointsRequired: int(a.PointsRequired),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps a domain error to an HTTP status and writes it.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, learner.ErrLearnerNotFound):
		writeJSONError(w, http.StatusNotFound, "learner_not_found", "Learner not found")
	case errors.Is(err, progress.ErrLessonNotFound):
		writeJSONError(w, http.StatusNotFound, "lesson_not_found", "Lesson not found")
	case errors.Is(err, achievement.ErrAchievementNotFound):
		writeJSONError(w, http.StatusNotFound, "achievement_not_found", "Achievement not found")
	case errors.Is(err, leaderboard.ErrLearnerNotRanked):
		writeJSONError(w, http.StatusNotFound, "not_ranked", "Learner is not in the ranked population")
	case errors.Is(err, progress.ErrNotEnrolled):
		writeJSONError(w, http.StatusForbidden, "not_enrolled", "Learner is not enrolled in the course")
	case errors.Is(err, progress.ErrLessonLocked):
		writeJSONError(w, http.StatusConflict, "lesson_locked", "Complete the previous lesson first")
	case errors.Is(err, learner.ErrLearnerAlreadyExists):
		writeJSONError(w, http.StatusConflict, "username_taken", "Username is already taken")
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", "Resource not found")
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", "Invalid request")
	case shared.IsConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", "Concurrent update, retry the request")
	case shared.IsRetryable(err):
		s.logger.Error(logMsg, logger.Err(err))
		writeJSONError(w, http.StatusServiceUnavailable, "storage_unavailable", "Temporary storage failure, retry the request")
	default:
		s.logger.Error(logMsg, logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
