package admin

import (
	"context"
	"fmt"

	"puckline/models"
	"puckline/utils"

	"go.uber.org/zap"
)

// TokenLister reads every stored token, newest first.
type TokenLister interface {
	ListAll(ctx context.Context) ([]models.StoredToken, error)
}

// ProfileLookup reads profiles by id.
type ProfileLookup interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error)
}

// SubscriberService reports who is subscribed to push notifications.
type SubscriberService interface {
	ListSubscribers(ctx context.Context) ([]models.SubscriberSummary, error)
}

// DefaultSubscriberService is the production implementation.
type DefaultSubscriberService struct {
	tokens   TokenLister
	profiles ProfileLookup
	cache    ListingCache
}

// NewDefaultSubscriberService requires repositories opened with
// service-level credentials. cache may be nil.
func NewDefaultSubscriberService(tokens TokenLister, profiles ProfileLookup, cache ListingCache) (*DefaultSubscriberService, error) {
	if tokens == nil || profiles == nil {
		return nil, fmt.Errorf("subscriber service initialization error: token or profile repository is nil")
	}
	return &DefaultSubscriberService{tokens: tokens, profiles: profiles, cache: cache}, nil
}

// ListSubscribers aggregates tokens per user and joins their profiles. Any
// read failure aborts the whole listing.
func (s *DefaultSubscriberService) ListSubscribers(ctx context.Context) ([]models.SubscriberSummary, error) {
	logger := utils.GetLogger()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			logger.Warn("Subscriber cache read failed, falling back to store", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	tokens, err := s.tokens.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListSubscribers: read tokens: %w", err)
	}

	ids := distinctUserIDs(tokens)
	profiles := map[string]models.Profile{}
	if len(ids) > 0 {
		profiles, err = s.profiles.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("ListSubscribers: read profiles: %w", err)
		}
	}

	users := Aggregate(tokens, profiles)
	if s.cache != nil {
		if err := s.cache.Set(ctx, users); err != nil {
			logger.Warn("Failed to cache subscriber listing", zap.Error(err))
		}
	}
	return users, nil
}

func distinctUserIDs(tokens []models.StoredToken) []string {
	seen := make(map[string]bool, len(tokens))
	var ids []string
	for _, t := range tokens {
		if !seen[t.UserID] {
			seen[t.UserID] = true
			ids = append(ids, t.UserID)
		}
	}
	return ids
}

// Aggregate folds tokens, ordered newest first, into one summary per user.
// The first token seen for a user fixes its timestamp; later ones only bump
// the count. Users keep the order in which they first appear.
func Aggregate(tokens []models.StoredToken, profiles map[string]models.Profile) []models.SubscriberSummary {
	index := make(map[string]int)
	users := make([]models.SubscriberSummary, 0)
	for _, t := range tokens {
		if i, ok := index[t.UserID]; ok {
			users[i].TokenCount++
			continue
		}
		p := profiles[t.UserID]
		index[t.UserID] = len(users)
		users = append(users, models.SubscriberSummary{
			UserID:            t.UserID,
			Nickname:          p.Nickname,
			Email:             p.Email,
			PreferredLanguage: p.PreferredLanguage,
			FavoriteTeamIDs:   p.FavoriteTeamIDs,
			TokenCount:        1,
			TokenCreatedAt:    t.CreatedAt,
		})
	}
	return users
}
