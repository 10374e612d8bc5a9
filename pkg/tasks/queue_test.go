package tasks

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/internal/testutil"
)

func newTestQueueManager(t *testing.T) *QueueManager {
	t.Helper()

	mr := testutil.NewMiniredis(t)

	qm := NewQueueManager(&asynq.RedisClientOpt{Addr: mr.Addr()}, "")
	t.Cleanup(func() {
		_ = qm.Close()
	})

	return qm
}

func TestNewQueueManager(t *testing.T) {
	qm := newTestQueueManager(t)

	assert.NotNil(t, qm.client)
	assert.NotNil(t, qm.inspector)
	assert.Equal(t, DefaultQueue, qm.Queue())
}

func TestQueueManager_EnqueueWarm(t *testing.T) {
	qm := newTestQueueManager(t)
	ctx := context.Background()

	payload := WarmPayload{Section: "overview", Locale: "en", Trigger: TriggerSchedule}

	enqueued, err := qm.EnqueueWarm(ctx, payload)
	require.NoError(t, err)
	assert.True(t, enqueued)

	// Same task ID while the first is still queued
	enqueued, err = qm.EnqueueWarm(ctx, payload)
	require.NoError(t, err)
	assert.False(t, enqueued)

	other := WarmPayload{Section: "overview", Locale: "id", Trigger: TriggerSchedule}

	enqueued, err = qm.EnqueueWarm(ctx, other)
	require.NoError(t, err)
	assert.True(t, enqueued)
}
