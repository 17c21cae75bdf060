package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every LexFlow task runs on.
	QueueDefault = "default"
	// TaskAuditRetention deletes audit rows past the retention window.
	TaskAuditRetention = "audit:retention"
)

// AuditRetentionPayload identifies what triggered a retention run.
type AuditRetentionPayload struct {
	Trigger string `json:"trigger"`
}

// NewAuditRetentionTask builds the retention task.
func NewAuditRetentionTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(AuditRetentionPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRetention, data), nil
}
