package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	tokenRepo "puckline/database/repository/token"
	"puckline/models"
	"puckline/utils"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
)

var ErrInvalidSubscription = errors.New("invalid push subscription")

// Invalidator drops derived views of the token table, such as the cached
// admin listing.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// SubscriptionService manages a user's stored push tokens.
type SubscriptionService interface {
	Save(ctx context.Context, userID string, token json.RawMessage) (*models.StoredToken, error)
	Remove(ctx context.Context, userID, endpoint string) error
	ListForUser(ctx context.Context, userID string) ([]models.StoredToken, error)
}

// DefaultSubscriptionService is the production implementation.
type DefaultSubscriptionService struct {
	repo  tokenRepo.TokenRepository
	cache Invalidator
}

func NewDefaultSubscriptionService(repo tokenRepo.TokenRepository, cache Invalidator) (*DefaultSubscriptionService, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscription service initialization error: token repository is nil")
	}
	return &DefaultSubscriptionService{repo: repo, cache: cache}, nil
}

// Save validates the token and upserts it verbatim for the user. Store
// failures are returned unchanged.
func (s *DefaultSubscriptionService) Save(ctx context.Context, userID string, token json.RawMessage) (*models.StoredToken, error) {
	if err := Validate(token); err != nil {
		return nil, err
	}

	stored, err := s.repo.Upsert(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	utils.GetLogger().Info("Stored push subscription", zap.String("userID", userID), zap.String("tokenID", stored.ID))
	return stored, nil
}

func (s *DefaultSubscriptionService) Remove(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidSubscription)
	}
	if err := s.repo.DeleteByEndpoint(ctx, userID, endpoint); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *DefaultSubscriptionService) ListForUser(ctx context.Context, userID string) ([]models.StoredToken, error) {
	return s.repo.ListByUsers(ctx, []string{userID})
}

func (s *DefaultSubscriptionService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		utils.GetLogger().Warn("Failed to invalidate subscriber cache", zap.Error(err))
	}
}

// Validate accepts a Web Push subscription object with an https endpoint
// and both keys, or a non-empty FCM registration token string.
func Validate(token json.RawMessage) error {
	trimmed := bytes.TrimSpace(token)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty token", ErrInvalidSubscription)
	}

	if trimmed[0] == '"' {
		var registration string
		if err := gojson.Unmarshal(trimmed, &registration); err != nil || registration == "" {
			return fmt.Errorf("%w: registration token must be a non-empty string", ErrInvalidSubscription)
		}
		return nil
	}

	var sub models.PushSubscription
	if err := gojson.Unmarshal(trimmed, &sub); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubscription, err)
	}
	u, err := url.Parse(sub.Endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: endpoint must be an absolute https URL", ErrInvalidSubscription)
	}
	if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return fmt.Errorf("%w: keys.p256dh and keys.auth are required", ErrInvalidSubscription)
	}
	return nil
}
