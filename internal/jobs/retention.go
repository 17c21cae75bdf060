package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("jobs")

// Purger removes audit rows older than the retention window.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// AuditRetentionJob handles TaskAuditRetention.
type AuditRetentionJob struct {
	purger Purger
	logger *zap.Logger
}

// NewAuditRetentionJob creates the retention handler.
func NewAuditRetentionJob(purger Purger, logger *zap.Logger) *AuditRetentionJob {
	return &AuditRetentionJob{purger: purger, logger: logger}
}

// Handle runs one retention pass.
func (j *AuditRetentionJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.purger == nil {
		return errors.New("audit retention: handler not configured")
	}
	var payload AuditRetentionPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Trigger == "" {
		payload.Trigger = "schedule"
	}

	ctx, span := tracer.Start(ctx, "jobs.AuditRetention")
	defer span.End()
	span.SetAttributes(attribute.String("trigger", payload.Trigger))

	start := time.Now()
	logger := j.logger.With(zap.String("task", TaskAuditRetention), zap.String("trigger", payload.Trigger))
	logger.Info("starting audit retention")

	deleted, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		logger.Error("audit retention failed", zap.Error(err))
		return err
	}

	logger.Info("completed audit retention",
		zap.Int("deleted", deleted),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
