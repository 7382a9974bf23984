package cron

import (
	"context"
	"errors"
	"testing"

	"puckline/models"
	"puckline/services/push"
	"puckline/services/tasks"
	"puckline/utils"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	utils.Logger = zap.NewNop()
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Send(ctx context.Context, req push.Request) (*push.Report, error) {
	args := m.Called(ctx, req)
	report, _ := args.Get(0).(*push.Report)
	return report, args.Error(1)
}

func TestHandleBroadcastTask(t *testing.T) {
	sender := new(MockBroadcaster)
	want := push.Request{
		Payload:   models.NotificationPayload{Title: "Puck drop", Body: "Game starts in 10", URL: "/games/7"},
		UserIDs:   []string{"u1"},
		PruneGone: true,
	}
	sender.On("Send", mock.Anything, want).Return(&push.Report{Total: 1, Succeeded: 1}, nil)

	task, err := tasks.NewBroadcastTask(models.BroadcastRequest{
		Title:     "Puck drop",
		Body:      "Game starts in 10",
		URL:       "/games/7",
		UserIDs:   []string{"u1"},
		PruneGone: true,
	})
	require.NoError(t, err)
	assert.Equal(t, tasks.TypePushBroadcast, task.Type())

	require.NoError(t, HandleBroadcastTask(sender)(context.Background(), task))
	sender.AssertExpectations(t)
}

func TestHandleBroadcastTask_Errors(t *testing.T) {
	sender := new(MockBroadcaster)
	err := HandleBroadcastTask(sender)(context.Background(), asynq.NewTask(tasks.TypePushBroadcast, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	sender.On("Send", mock.Anything, mock.Anything).Return(nil, push.ErrMissingCredentials)
	task, err := tasks.NewBroadcastTask(models.BroadcastRequest{})
	require.NoError(t, err)
	err = HandleBroadcastTask(sender)(context.Background(), task)
	assert.True(t, errors.Is(err, push.ErrMissingCredentials))
}
