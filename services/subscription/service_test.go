package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"puckline/database"
	"puckline/database/repository/token/tokentest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

const validSub = `{"endpoint":"https://fcm.googleapis.com/fcm/send/abc","expirationTime":null,"keys":{"p256dh":"BNcR","auth":"tBHI"}}`

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		token string
		ok    bool
	}{
		{"web push subscription", validSub, true},
		{"registration token", `"dGVzdA:APA91b"`, true},
		{"empty", ``, false},
		{"empty string token", `""`, false},
		{"http endpoint", `{"endpoint":"http://push.example/a","keys":{"p256dh":"k","auth":"a"}}`, false},
		{"relative endpoint", `{"endpoint":"/push","keys":{"p256dh":"k","auth":"a"}}`, false},
		{"missing auth", `{"endpoint":"https://push.example/a","keys":{"p256dh":"k"}}`, false},
		{"not json", `{endpoint}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(json.RawMessage(tt.token))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSubscription)
			}
		})
	}
}

func TestSave_UpsertsVerbatimAndInvalidatesCache(t *testing.T) {
	repo := tokentest.NewMemoryRepo()
	cache := new(MockInvalidator)
	cache.On("Invalidate", mock.Anything).Return(nil).Twice()

	svc, err := NewDefaultSubscriptionService(repo, cache)
	require.NoError(t, err)

	first, err := svc.Save(context.Background(), "user-1", json.RawMessage(validSub))
	require.NoError(t, err)
	assert.Equal(t, validSub, string(first.Token))

	_, err = svc.Save(context.Background(), "user-1", json.RawMessage(validSub))
	require.NoError(t, err)

	tokens, err := svc.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, validSub, string(tokens[0].Token))
	cache.AssertExpectations(t)
}

func TestSave_InvalidTokenNeverReachesStore(t *testing.T) {
	repo := tokentest.NewMemoryRepo()
	svc, err := NewDefaultSubscriptionService(repo, nil)
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), "user-1", json.RawMessage(`{"endpoint":"https://x"}`))
	assert.ErrorIs(t, err, ErrInvalidSubscription)
	assert.Zero(t, repo.Len())
}

func TestSave_StoreFailureReturnedUnchanged(t *testing.T) {
	repo := tokentest.NewMemoryRepo()
	denied := errors.Join(database.ErrAccessDenied, errors.New("new row violates row-level security policy"))
	repo.ErrUpsert = denied
	cache := new(MockInvalidator)

	svc, err := NewDefaultSubscriptionService(repo, cache)
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), "user-1", json.RawMessage(validSub))
	assert.Same(t, denied, err)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestRemove(t *testing.T) {
	repo := tokentest.NewMemoryRepo()
	cache := new(MockInvalidator)
	cache.On("Invalidate", mock.Anything).Return(errors.New("redis down"))
	svc, err := NewDefaultSubscriptionService(repo, cache)
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), "user-1", json.RawMessage(validSub))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), "user-1", "https://fcm.googleapis.com/fcm/send/abc"))
	assert.Zero(t, repo.Len())

	assert.ErrorIs(t, svc.Remove(context.Background(), "user-1", "https://fcm.googleapis.com/fcm/send/abc"), database.ErrNotFound)
	assert.ErrorIs(t, svc.Remove(context.Background(), "user-1", ""), ErrInvalidSubscription)
}

func TestNewDefaultSubscriptionService_NilRepo(t *testing.T) {
	_, err := NewDefaultSubscriptionService(nil, nil)
	assert.Error(t, err)
}
