package push

import (
	"context"
	"encoding/json"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	gojson "github.com/goccy/go-json"
)

// MessagingClient is the subset of the FCM client the transport uses.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMTransport delivers to registration tokens issued by Firebase Cloud Messaging.
type FCMTransport struct {
	client MessagingClient
}

func NewFCMTransport(client MessagingClient) *FCMTransport {
	return &FCMTransport{client: client}
}

func (t *FCMTransport) Send(ctx context.Context, token json.RawMessage, payload []byte) (*Delivery, error) {
	var registration string
	if err := gojson.Unmarshal(token, &registration); err != nil || registration == "" {
		return nil, fmt.Errorf("%w: expected a registration token string", ErrMalformedToken)
	}
	p := DecodePayload(payload)

	msg := &messaging.Message{
		Token: registration,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: map[string]string{"url": p.URL},
	}

	id, err := t.client.Send(ctx, msg)
	if err != nil {
		return &Delivery{Transport: "fcm", Gone: messaging.IsUnregistered(err)},
			fmt.Errorf("FCMTransport.Send: failed to send FCM message: %w", err)
	}
	return &Delivery{Transport: "fcm", MessageID: id}, nil
}
