package tokenRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"puckline/models"

	gojson "github.com/goccy/go-json"
)

// TokenRepository defines data access for notification_tokens.
type TokenRepository interface {
	// Upsert creates or replaces the row for (userID, endpoint of token).
	Upsert(ctx context.Context, userID string, token json.RawMessage) (*models.StoredToken, error)
	// ListAll returns every token ordered by created_at descending.
	ListAll(ctx context.Context) ([]models.StoredToken, error)
	// ListByUsers returns the tokens of the given users ordered by created_at descending.
	ListByUsers(ctx context.Context, userIDs []string) ([]models.StoredToken, error)
	// DeleteByEndpoint removes the user's token addressed to endpoint.
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) error
	// DeleteByID removes a single token row.
	DeleteByID(ctx context.Context, id string) error
}

var ErrEmptyToken = errors.New("token is empty")

// Endpoint returns the device key of a stored token: the subscription
// endpoint, or the bare string for registration-token style tokens.
func Endpoint(token json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(token))
	if trimmed == "" || trimmed == "null" {
		return "", ErrEmptyToken
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := gojson.Unmarshal(token, &s); err != nil {
			return "", fmt.Errorf("Endpoint: %w", err)
		}
		if s == "" {
			return "", ErrEmptyToken
		}
		return s, nil
	}
	var sub struct {
		Endpoint string `json:"endpoint"`
	}
	if err := gojson.Unmarshal(token, &sub); err != nil {
		return "", fmt.Errorf("Endpoint: %w", err)
	}
	if sub.Endpoint == "" {
		return "", fmt.Errorf("Endpoint: subscription has no endpoint")
	}
	return sub.Endpoint, nil
}
