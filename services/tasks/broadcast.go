package tasks

import (
	"fmt"
	"time"

	"puckline/models"

	gojson "github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const TypePushBroadcast = "push:broadcast"

// NewBroadcastTask wraps a broadcast request. A failed fan-out is not retried.
func NewBroadcastTask(req models.BroadcastRequest) (*asynq.Task, error) {
	b, err := gojson.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("NewBroadcastTask: %w", err)
	}
	return asynq.NewTask(TypePushBroadcast, b, asynq.MaxRetry(0), asynq.Timeout(10*time.Minute)), nil
}

// DecodeBroadcastTask reads the request back out of a task payload.
func DecodeBroadcastTask(task *asynq.Task) (models.BroadcastRequest, error) {
	var req models.BroadcastRequest
	if err := gojson.Unmarshal(task.Payload(), &req); err != nil {
		return req, fmt.Errorf("DecodeBroadcastTask: %w", err)
	}
	return req, nil
}
