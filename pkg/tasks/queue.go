package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/salesdash/salesdash/pkg/observability"
)

// QueueManager manages task queuing
type QueueManager struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
}

// NewQueueManager creates a new queue manager placing tasks on queue
func NewQueueManager(redisOpt *asynq.RedisClientOpt, queue string) *QueueManager {
	if queue == "" {
		queue = DefaultQueue
	}

	return &QueueManager{
		client:    asynq.NewClient(*redisOpt),
		inspector: asynq.NewInspector(*redisOpt),
		queue:     queue,
	}
}

// Queue returns the queue name tasks are placed on
func (q *QueueManager) Queue() string {
	return q.queue
}

// NewWarmTask encodes a warm payload as an Asynq task
func NewWarmTask(payload WarmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	return asynq.NewTask(TypeWarmSection, data), nil
}

// EnqueueWarm enqueues a warm task. It reports false without error when a
// task with the same ID is already queued.
func (q *QueueManager) EnqueueWarm(ctx context.Context, payload WarmPayload, opts ...asynq.Option) (bool, error) {
	if payload.EnqueuedAt.IsZero() {
		payload.EnqueuedAt = time.Now().UTC()
	}

	task, err := NewWarmTask(payload)
	if err != nil {
		return false, err
	}

	// Default options
	allOpts := []asynq.Option{
		asynq.TaskID(payload.UniqueID()),
		asynq.Queue(q.queue),
		asynq.MaxRetry(2),
		asynq.Timeout(5 * time.Minute),
		asynq.Retention(10 * time.Minute),
	}
	allOpts = append(allOpts, opts...)

	if _, err := q.client.EnqueueContext(ctx, task, allOpts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return false, nil
		}

		return false, fmt.Errorf("failed to enqueue task: %w", err)
	}

	observability.RecordTaskEnqueued(payload.Section, payload.Trigger)

	return true, nil
}

// IsTaskPendingOrRunning checks if a task is pending or running
func (q *QueueManager) IsTaskPendingOrRunning(payload WarmPayload) (bool, error) {
	info, err := q.inspector.GetTaskInfo(q.queue, payload.UniqueID())
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, err
	}

	return info.State == asynq.TaskStatePending ||
		info.State == asynq.TaskStateActive ||
		info.State == asynq.TaskStateRetry, nil
}

// GetQueueStats returns queue statistics
func (q *QueueManager) GetQueueStats() (*asynq.QueueInfo, error) {
	return q.inspector.GetQueueInfo(q.queue)
}

// Close closes the queue manager
func (q *QueueManager) Close() error {
	if err := q.inspector.Close(); err != nil {
		return err
	}

	return q.client.Close()
}

func isNotFound(err error) bool {
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "not found")
}
