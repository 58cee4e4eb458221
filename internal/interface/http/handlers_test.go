package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
	"github.com/learnhub/learnhub-backend/internal/domain/shared"
	"github.com/learnhub/learnhub-backend/pkg/logger"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *APIError {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestWriteDomainError_StatusMapping(t *testing.T) {
	s := &Server{logger: logger.Default()}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "learner not found",
			err:        learner.ErrLearnerNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "learner_not_found",
		},
		{
			name:       "lesson locked",
			err:        progress.ErrLessonLocked,
			wantStatus: http.StatusConflict,
			wantCode:   "lesson_locked",
		},
		{
			name:       "storage failure is service unavailable",
			err:        shared.WrapError("postgres", "ApplyReward", shared.ErrStorage, "apply reward", errors.New("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "storage_unavailable",
		},
		{
			name:       "statement timeout is service unavailable",
			err:        shared.WrapError("postgres", "MarkCompleted", shared.ErrTimeout, "flip completion flag", context.DeadlineExceeded),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "storage_unavailable",
		},
		{
			name:       "storage failure survives further wrapping",
			err:        fmt.Errorf("complete lesson: %w", shared.WrapError("postgres", "WithTx", shared.ErrStorage, "commit transaction", errors.New("broken pipe"))),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "storage_unavailable",
		},
		{
			name:       "write conflict",
			err:        shared.WrapError("progress", "MarkCompleted", shared.ErrConflict, "concurrent completion", nil),
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "unclassified error is internal",
			err:        errors.New("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeDomainError(rec, tt.err, "request failed")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}
