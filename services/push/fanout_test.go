package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"puckline/database"
	"puckline/database/repository/token/tokentest"
	"puckline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingTransport accepts well-formed subscriptions and records what it was handed.
type recordingTransport struct {
	mu     sync.Mutex
	tokens []json.RawMessage
	status map[string]int
}

func (r *recordingTransport) Send(_ context.Context, token json.RawMessage, _ []byte) (*Delivery, error) {
	r.mu.Lock()
	r.tokens = append(r.tokens, append(json.RawMessage(nil), token...))
	r.mu.Unlock()

	sub, err := ParseSubscription(token)
	if err != nil {
		return nil, err
	}
	code := http.StatusCreated
	if c, ok := r.status[sub.Endpoint]; ok {
		code = c
	}
	d := &Delivery{Transport: "webpush", StatusCode: code}
	if code >= 400 {
		d.Gone = code == http.StatusGone || code == http.StatusNotFound
		return d, &StatusError{StatusCode: code}
	}
	return d, nil
}

func subscriptionJSON(endpoint string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"endpoint":%q,"keys":{"p256dh":"BNcR","auth":"tBHI"}}`, endpoint))
}

func seedTokens(repo *tokentest.MemoryRepo, tokens ...json.RawMessage) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, tok := range tokens {
		// Newest first once ordered, so recipient index i+1 is tokens[i].
		repo.Add(models.StoredToken{
			UserID:    fmt.Sprintf("user-%d", i+1),
			Token:     tok,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestFanoutSender_IsolatesMalformedRecipient(t *testing.T) {
	repo := tokentest.NewMemoryRepo()
	seedTokens(repo,
		subscriptionJSON("https://push.example/1"),
		subscriptionJSON("https://push.example/2"),
		json.RawMessage(`{"endpoint":"https://push.example/3"}`),
		subscriptionJSON("https://push.example/4"),
		subscriptionJSON("https://push.example/5"),
	)
	transport := &recordingTransport{}
	logger, logs := observedLogger()

	report, err := NewFanoutSender(repo, transport, logger, 2).Send(context.Background(), Request{Payload: DemoPayload()})
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.Results[2].Success)
	assert.Equal(t, 3, report.Results[2].Index)
	assert.True(t, report.Results[3].Success)
	assert.True(t, report.Results[4].Success)
	assert.Len(t, transport.tokens, 5)

	assert.Equal(t, 4, logs.FilterMessage("Push sent").Len())
	failed := logs.FilterMessage("Push send failed").All()
	require.Len(t, failed, 1)
	assert.EqualValues(t, 3, failed[0].ContextMap()["recipient"])
}

func TestFanoutSender_EmptyTokenSet(t *testing.T) {
	transport := &recordingTransport{}
	logger, logs := observedLogger()

	report, err := NewFanoutSender(tokentest.NewMemoryRepo(), transport, logger, 4).Send(context.Background(), Request{})
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Empty(t, transport.tokens)
	assert.Equal(t, 1, logs.FilterMessage("No notification tokens found, nothing to send").Len())
}

func TestFanoutSender_MissingCredentials(t *testing.T) {
	repo := tokentest.NewMemoryRepo()
	seedTokens(repo, subscriptionJSON("https://push.example/1"))

	_, err := NewFanoutSender(repo, nil, nil, 1).Send(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestFanoutSender_AccessDeniedCarriesHint(t *testing.T) {
	repo := tokentest.NewMemoryRepo()
	repo.ErrAll = fmt.Errorf("ListAll: %w: permission denied", database.ErrAccessDenied)
	transport := &recordingTransport{}

	_, err := NewFanoutSender(repo, transport, nil, 1).Send(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrAccessDenied)
	assert.Contains(t, err.Error(), "anonymous-level credentials cannot see other users")
	assert.Empty(t, transport.tokens)
}

func TestFanoutSender_ReadFailureWithoutHint(t *testing.T) {
	repo := tokentest.NewMemoryRepo()
	repo.ErrAll = errors.New("connection refused")

	_, err := NewFanoutSender(repo, &recordingTransport{}, nil, 1).Send(context.Background(), Request{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "hint")
}

func TestFanoutSender_HandsStoredBytesVerbatim(t *testing.T) {
	stored := json.RawMessage("{ \"endpoint\": \"https://push.example/x\",\n  \"keys\": {\"p256dh\": \"BNcR\", \"auth\": \"tBHI\"} }")
	repo := tokentest.NewMemoryRepo()
	_, err := repo.Upsert(context.Background(), "user-1", stored)
	require.NoError(t, err)
	transport := &recordingTransport{}

	_, err = NewFanoutSender(repo, transport, nil, 1).Send(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, transport.tokens, 1)
	assert.Equal(t, []byte(stored), []byte(transport.tokens[0]))
}

func TestFanoutSender_FilteredUsersAndPrune(t *testing.T) {
	repo := tokentest.NewMemoryRepo()
	seedTokens(repo,
		subscriptionJSON("https://push.example/1"),
		subscriptionJSON("https://push.example/gone"),
		subscriptionJSON("https://push.example/3"),
	)
	transport := &recordingTransport{status: map[string]int{"https://push.example/gone": http.StatusGone}}

	report, err := NewFanoutSender(repo, transport, nil, 1).Send(context.Background(), Request{
		UserIDs:   []string{"user-2", "user-3"},
		PruneGone: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Succeeded)
	require.Equal(t, 1, report.Failed)
	gone := report.Results[0]
	assert.Equal(t, "user-2", gone.UserID)
	assert.True(t, gone.Gone)
	assert.True(t, gone.Pruned)
	assert.Equal(t, http.StatusGone, gone.StatusCode)
	assert.Equal(t, 2, repo.Len())
}
