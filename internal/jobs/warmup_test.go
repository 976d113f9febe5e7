package jobs

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolemanager/rbac-engine/internal/logging"
)

func TestProcessTaskWarmsEachTarget(t *testing.T) {
	var warmed []int64
	handler := NewHandler(func(ctx context.Context, userID int64, contextID *int64) error {
		warmed = append(warmed, userID)
		return nil
	}, logging.Noop())

	task, err := NewWarmupTask([]WarmupTarget{{UserID: 1}, {UserID: 2}})
	require.NoError(t, err)

	err = handler.ProcessTask(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, warmed)
}

func TestProcessTaskSkipsRetryOnBadPayload(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, userID int64, contextID *int64) error {
		return nil
	}, logging.Noop())

	task := asynq.NewTask(TaskTypeWarmup, []byte("not json"))
	err := handler.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestProcessTaskContinuesPastIndividualFailures(t *testing.T) {
	var attempts []int64
	handler := NewHandler(func(ctx context.Context, userID int64, contextID *int64) error {
		attempts = append(attempts, userID)
		if userID == 1 {
			return assert.AnError
		}
		return nil
	}, logging.Noop())

	task, err := NewWarmupTask([]WarmupTarget{{UserID: 1}, {UserID: 2}})
	require.NoError(t, err)

	err = handler.ProcessTask(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, attempts)
}
