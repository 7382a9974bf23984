package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// WebPushConfig carries the VAPID key pair and message options.
type WebPushConfig struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
	TTL        int
	HTTPClient webpush.HTTPClient
}

// WebPushTransport sends VAPID-signed, encrypted Web Push messages.
type WebPushTransport struct {
	cfg WebPushConfig
}

func NewWebPushTransport(cfg WebPushConfig) (*WebPushTransport, error) {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 60 * 60 * 24
	}
	return &WebPushTransport{cfg: cfg}, nil
}

// PublicKey is the application server key clients subscribe with.
func (t *WebPushTransport) PublicKey() string {
	return t.cfg.PublicKey
}

func (t *WebPushTransport) Send(ctx context.Context, token json.RawMessage, payload []byte) (*Delivery, error) {
	sub, err := ParseSubscription(token)
	if err != nil {
		return nil, err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      t.cfg.HTTPClient,
		Subscriber:      t.cfg.Subscriber,
		VAPIDPublicKey:  t.cfg.PublicKey,
		VAPIDPrivateKey: t.cfg.PrivateKey,
		TTL:             t.cfg.TTL,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return nil, fmt.Errorf("WebPushTransport.Send: %w", err)
	}
	defer resp.Body.Close()

	d := &Delivery{Transport: "webpush", StatusCode: resp.StatusCode}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return d, nil
	}
	d.Gone = resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return d, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

// GenerateVAPIDKeys returns a new (public, private) key pair.
func GenerateVAPIDKeys() (string, string, error) {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("GenerateVAPIDKeys: %w", err)
	}
	return publicKey, privateKey, nil
}
