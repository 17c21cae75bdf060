package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePurger struct {
	calls   int
	deleted int
	err     error
}

func (f *fakePurger) PurgeExpired(context.Context) (int, error) {
	f.calls++
	return f.deleted, f.err
}

func TestAuditRetentionJob_Handle(t *testing.T) {
	purger := &fakePurger{deleted: 42}
	job := NewAuditRetentionJob(purger, zap.NewNop())

	task, err := NewAuditRetentionTask("schedule")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, purger.calls)
}

func TestAuditRetentionJob_EmptyPayload(t *testing.T) {
	purger := &fakePurger{}
	job := NewAuditRetentionJob(purger, zap.NewNop())

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskAuditRetention, nil)))
	assert.Equal(t, 1, purger.calls)
}

func TestAuditRetentionJob_BadPayloadSkipsRetry(t *testing.T) {
	purger := &fakePurger{}
	job := NewAuditRetentionJob(purger, zap.NewNop())

	err := job.Handle(context.Background(), asynq.NewTask(TaskAuditRetention, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, purger.calls)
}

func TestAuditRetentionJob_PropagatesFailure(t *testing.T) {
	purger := &fakePurger{err: errors.New("supabase down")}
	job := NewAuditRetentionJob(purger, zap.NewNop())

	task, err := NewAuditRetentionTask("manual")
	require.NoError(t, err)
	assert.EqualError(t, job.Handle(context.Background(), task), "supabase down")
}

func TestAuditRetentionJob_NotConfigured(t *testing.T) {
	var job *AuditRetentionJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskAuditRetention, nil)))
}
