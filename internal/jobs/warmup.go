// Package jobs implements the background cache-warmup task: an asynq
// task type, a JSON payload, and a handler that drives the engine
// rather than the database directly.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/rolemanager/rbac-engine/internal/logging"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeWarmup is the task type for priming the two-level cache
	// for a batch of active users.
	TaskTypeWarmup = "permissions:warmup"
)

// WarmupPayload names the (user, context) pairs to prime. A nil
// ContextID warms the Global Context.
type WarmupPayload struct {
	Targets []WarmupTarget `json:"targets"`
}

// WarmupTarget is one (user, context) pair to resolve and cache.
type WarmupTarget struct {
	UserID    int64  `json:"user_id"`
	ContextID *int64 `json:"context_id,omitempty"`
}

// NewWarmupTask constructs an Asynq task carrying targets.
func NewWarmupTask(targets []WarmupTarget) (*asynq.Task, error) {
	data, err := json.Marshal(WarmupPayload{Targets: targets})
	if err != nil {
		return nil, fmt.Errorf("jobs: marshal warmup payload: %w", err)
	}
	return asynq.NewTask(TaskTypeWarmup, data), nil
}

// Warmer is the narrow engine surface the handler needs: resolve and
// cache one (user, context) pair. internal/jobs stays free of an
// import on the root package by depending on this instead of
// *rolemanager.Engine directly.
type Warmer func(ctx context.Context, userID int64, contextID *int64) error

// Handler processes TaskTypeWarmup tasks.
type Handler struct {
	warm   Warmer
	logger *logging.Logger
}

// NewHandler wires a Handler over warm.
func NewHandler(warm Warmer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Handler{warm: warm, logger: logger}
}

// ProcessTask implements asynq.Handler.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	warmed := 0
	for _, target := range payload.Targets {
		if err := h.warm(ctx, target.UserID, target.ContextID); err != nil {
			h.logger.Warning(ctx, "cache warmup failed", map[string]any{
				"user_id":    target.UserID,
				"context_id": target.ContextID,
				"error":      err.Error(),
			})
			continue
		}
		warmed++
	}
	h.logger.Info(ctx, "cache warmup completed", map[string]any{
		"requested": len(payload.Targets),
		"warmed":    warmed,
	})
	return nil
}
