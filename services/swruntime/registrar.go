package swruntime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"puckline/models"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ErrPermissionNotGranted is returned when notifications are not allowed.
var ErrPermissionNotGranted = errors.New("notification permission not granted")

// TokenStore persists subscriptions for a user.
type TokenStore interface {
	Upsert(ctx context.Context, userID string, token json.RawMessage) (*models.StoredToken, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]models.StoredToken, error)
}

// Registrar subscribes the current installation and stores the result.
type Registrar struct {
	platform       Platform
	store          TokenStore
	applicationKey string
	logger         *zap.Logger
}

func NewRegistrar(platform Platform, store TokenStore, applicationKey string, logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrar{platform: platform, store: store, applicationKey: applicationKey, logger: logger}
}

// Register creates a push subscription and upserts it for userID. Write
// failures are returned unchanged to the caller.
func (r *Registrar) Register(ctx context.Context, userID string) (*models.StoredToken, error) {
	if r.platform.Notifier.Permission() != PermissionGranted {
		return nil, ErrPermissionNotGranted
	}

	sub, err := r.platform.PushManager.Subscribe(ctx, &models.SubscriptionOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: r.applicationKey,
	})
	if err != nil {
		return nil, fmt.Errorf("Registrar.Register: subscribe: %w", err)
	}
	return r.persist(ctx, userID, sub)
}

// Sync re-persists the current subscription when it is not among the
// user's stored tokens, e.g. after the worker resubscribed.
// It reports whether a write happened.
func (r *Registrar) Sync(ctx context.Context, userID string) (bool, error) {
	if r.platform.Notifier.Permission() != PermissionGranted {
		return false, nil
	}
	sub, err := r.platform.PushManager.GetSubscription(ctx)
	if err != nil {
		return false, fmt.Errorf("Registrar.Sync: get subscription: %w", err)
	}
	if sub == nil {
		return false, nil
	}

	stored, err := r.store.ListByUsers(ctx, []string{userID})
	if err != nil {
		return false, fmt.Errorf("Registrar.Sync: %w", err)
	}
	for _, t := range stored {
		var known models.PushSubscription
		if gojson.Unmarshal(t.Token, &known) == nil && known.Endpoint == sub.Endpoint {
			return false, nil
		}
	}

	if _, err := r.persist(ctx, userID, sub); err != nil {
		return false, err
	}
	r.logger.Info("Re-persisted rotated push subscription", zap.String("userID", userID))
	return true, nil
}

func (r *Registrar) persist(ctx context.Context, userID string, sub *Subscription) (*models.StoredToken, error) {
	token, err := gojson.Marshal(sub.PushSubscription)
	if err != nil {
		return nil, fmt.Errorf("Registrar.persist: encode subscription: %w", err)
	}
	stored, err := r.store.Upsert(ctx, userID, token)
	if err != nil {
		r.logger.Error("Failed to store push subscription", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}
	return stored, nil
}
