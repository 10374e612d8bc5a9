package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/observability"
	"github.com/salesdash/salesdash/pkg/report"
)

// Warmer computes and caches a section
type Warmer interface {
	Table() *dataset.Table
	Warm(ctx context.Context, req report.Request) error
}

// TaskHandler handles task execution
type TaskHandler struct {
	warmer Warmer
	log    logrus.FieldLogger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(log logrus.FieldLogger, warmer Warmer) *TaskHandler {
	return &TaskHandler{
		warmer: warmer,
		log:    log.WithField("component", "task-handler"),
	}
}

// HandleWarm handles section warm tasks. Payloads that can never succeed
// are not retried.
func (h *TaskHandler) HandleWarm(ctx context.Context, t *asynq.Task) error {
	var payload WarmPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		observability.RecordError("task-handler", "unmarshal_error")

		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	req, err := payload.Request(h.warmer.Table())
	if err != nil {
		observability.RecordError("task-handler", "invalid_payload")

		return fmt.Errorf("invalid payload %s: %w: %w", payload.UniqueID(), err, asynq.SkipRetry)
	}

	log := h.log.WithFields(logrus.Fields{
		"task_id": payload.UniqueID(),
		"section": payload.Section,
		"locale":  payload.Locale,
		"trigger": payload.Trigger,
	})

	startTime := time.Now()

	if err := h.warmer.Warm(ctx, req); err != nil {
		log.WithError(err).Error("Warm task failed")
		observability.RecordTaskComplete(payload.Section, "failed", time.Since(startTime).Seconds())
		observability.RecordError("task-handler", "warm_error")

		return fmt.Errorf("warm error: %w", err)
	}

	observability.RecordTaskComplete(payload.Section, "success", time.Since(startTime).Seconds())

	log.WithField("duration", time.Since(startTime)).Debug("Task completed successfully")

	return nil
}

// Routes returns the task handler routes for Asynq
func (h *TaskHandler) Routes() map[string]asynq.HandlerFunc {
	return map[string]asynq.HandlerFunc{
		TypeWarmSection: h.HandleWarm,
	}
}
