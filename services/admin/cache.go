package admin

import (
	"context"
	"errors"
	"time"

	"puckline/models"

	gojson "github.com/goccy/go-json"
	"github.com/go-redis/redis/v8"
)

const subscribersCacheKey = "puckline:admin:subscribers"

// ListingCache holds the last computed subscriber listing.
type ListingCache interface {
	Get(ctx context.Context) ([]models.SubscriberSummary, bool, error)
	Set(ctx context.Context, users []models.SubscriberSummary) error
	Invalidate(ctx context.Context) error
}

// RedisListingCache stores the listing as JSON under a single key.
type RedisListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListingCache(client *redis.Client, ttl time.Duration) *RedisListingCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisListingCache{client: client, ttl: ttl}
}

func (c *RedisListingCache) Get(ctx context.Context) ([]models.SubscriberSummary, bool, error) {
	raw, err := c.client.Get(ctx, subscribersCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var users []models.SubscriberSummary
	if err := gojson.Unmarshal(raw, &users); err != nil {
		return nil, false, err
	}
	return users, true, nil
}

func (c *RedisListingCache) Set(ctx context.Context, users []models.SubscriberSummary) error {
	raw, err := gojson.Marshal(users)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, subscribersCacheKey, raw, c.ttl).Err()
}

func (c *RedisListingCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, subscribersCacheKey).Err()
}
