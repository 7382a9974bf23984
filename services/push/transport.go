package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"puckline/models"

	gojson "github.com/goccy/go-json"
)

var (
	ErrMalformedToken       = errors.New("malformed push token")
	ErrMissingCredentials   = errors.New("push signing credentials are not configured")
	ErrTransportUnavailable = errors.New("no transport configured for token type")
)

// Delivery describes the push service's answer to a single send.
type Delivery struct {
	Transport  string
	StatusCode int
	MessageID  string
	// Gone is set when the push service reports the token as permanently invalid.
	Gone bool
}

// StatusError is a non-success answer from a push service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("push service answered %d", e.StatusCode)
	}
	return fmt.Sprintf("push service answered %d: %s", e.StatusCode, e.Body)
}

// Transport delivers an already-encoded payload to one stored token.
type Transport interface {
	Send(ctx context.Context, token json.RawMessage, payload []byte) (*Delivery, error)
}

// ParseSubscription decodes a stored Web Push subscription token.
func ParseSubscription(token json.RawMessage) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	if err := gojson.Unmarshal(token, &sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return nil, fmt.Errorf("%w: subscription requires endpoint, keys.p256dh and keys.auth", ErrMalformedToken)
	}
	return &sub, nil
}

// Router sends subscription objects over Web Push and bare registration
// strings over FCM.
type Router struct {
	WebPush Transport
	FCM     Transport
}

func (r *Router) Send(ctx context.Context, token json.RawMessage, payload []byte) (*Delivery, error) {
	trimmed := bytes.TrimSpace(token)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	var next Transport
	switch trimmed[0] {
	case '{':
		next = r.WebPush
	case '"':
		next = r.FCM
	default:
		return nil, fmt.Errorf("%w: unsupported token shape", ErrMalformedToken)
	}
	if next == nil {
		return nil, ErrTransportUnavailable
	}
	return next.Send(ctx, token, payload)
}
