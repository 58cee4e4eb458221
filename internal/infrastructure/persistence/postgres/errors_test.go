package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub-backend/internal/domain/shared"
)

func TestStorageError_ClassifiesAsRetryable(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := storageError("ApplyReward", "apply reward", cause)

	assert.True(t, shared.IsRetryable(err))
	assert.True(t, errors.Is(err, shared.ErrStorage))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, shared.IsNotFound(err))

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "postgres", de.Domain)
	assert.Equal(t, "ApplyReward", de.Op)
}

func TestStorageError_TimedOutRewardWriteIsRetryable(t *testing.T) {
	// A reward write interrupted by a deadline has been rolled back in
	// full, so the caller must see it as retryable rather than fatal.
	err := storageError("ApplyReward", "apply reward", context.DeadlineExceeded)

	assert.True(t, shared.IsRetryable(err))
	assert.True(t, errors.Is(err, shared.ErrTimeout))
	assert.False(t, errors.Is(err, shared.ErrStorage))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestStorageError_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := storageError("MarkCompleted", "flip completion flag", ctx.Err())

	assert.True(t, shared.IsRetryable(err))
	assert.True(t, errors.Is(err, shared.ErrTimeout))
}

func TestStorageError_Message(t *testing.T) {
	err := storageError("RecentFor", "query activity log", errors.New("boom"))

	assert.Contains(t, err.Error(), "postgres.RecentFor")
	assert.Contains(t, err.Error(), "query activity log")
	assert.Contains(t, err.Error(), "boom")
}
