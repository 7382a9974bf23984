package cron

import (
	"context"
	"fmt"
	"time"

	"puckline/models"
	"puckline/services/push"
	"puckline/services/tasks"
	"puckline/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Broadcaster runs one fan-out.
type Broadcaster interface {
	Send(ctx context.Context, req push.Request) (*push.Report, error)
}

// BroadcastQueue enqueues broadcast tasks.
type BroadcastQueue struct {
	client *asynq.Client
}

func NewBroadcastQueue(opt asynq.RedisConnOpt) *BroadcastQueue {
	return &BroadcastQueue{client: asynq.NewClient(opt)}
}

// EnqueueBroadcast schedules a fan-out and returns the task id.
func (q *BroadcastQueue) EnqueueBroadcast(ctx context.Context, req models.BroadcastRequest) (string, error) {
	task, err := tasks.NewBroadcastTask(req)
	if err != nil {
		return "", err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("EnqueueBroadcast: %w", err)
	}
	return info.ID, nil
}

func (q *BroadcastQueue) Close() error {
	return q.client.Close()
}

// InitBroadcastWorker runs the async worker in background.
func InitBroadcastWorker(opt asynq.RedisConnOpt, sender Broadcaster) *asynq.Server {
	logger := utils.GetLogger()
	srv := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePushBroadcast, HandleBroadcastTask(sender))

	go func() {
		logger.Info("Starting broadcast worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Warn("Broadcast worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				logger.Fatal("Broadcast worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleBroadcastTask decodes a broadcast request and runs the fan-out.
func HandleBroadcastTask(sender Broadcaster) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		req, err := tasks.DecodeBroadcastTask(task)
		if err != nil {
			logger.Error("Invalid broadcast payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		payload := models.NotificationPayload{Title: req.Title, Body: req.Body, URL: req.URL}
		if payload == (models.NotificationPayload{}) {
			payload = push.DemoPayload()
		}

		report, err := sender.Send(ctx, push.Request{
			Payload:   payload,
			UserIDs:   req.UserIDs,
			PruneGone: req.PruneGone,
		})
		if err != nil {
			logger.Error("Broadcast failed", zap.Error(err))
			return err
		}

		logger.Info("Broadcast finished",
			zap.Int("recipients", report.Total),
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", report.Failed),
		)
		return nil
	}
}
