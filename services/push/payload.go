package push

import (
	"puckline/models"

	gojson "github.com/goccy/go-json"
)

// Fallbacks used when a delivered payload omits a field.
const (
	DefaultTitle = "Puckline Hockey League"
	DefaultBody  = "You have a new notification"
	DefaultURL   = "/"
)

// EncodePayload serialises the payload for the encrypted push envelope.
func EncodePayload(p models.NotificationPayload) ([]byte, error) {
	return gojson.Marshal(p)
}

// DecodePayload reads a delivered payload, substituting defaults for
// missing fields. Empty or malformed data yields all defaults.
func DecodePayload(data []byte) models.NotificationPayload {
	var p models.NotificationPayload
	if len(data) > 0 {
		if err := gojson.Unmarshal(data, &p); err != nil {
			p = models.NotificationPayload{}
		}
	}
	return WithDefaults(p)
}

// WithDefaults fills empty fields.
func WithDefaults(p models.NotificationPayload) models.NotificationPayload {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Body == "" {
		p.Body = DefaultBody
	}
	if p.URL == "" {
		p.URL = DefaultURL
	}
	return p
}

// DemoPayload is the fixed message the operator sender delivers.
func DemoPayload() models.NotificationPayload {
	return models.NotificationPayload{
		Title: "🏒 Puckline test notification",
		Body:  "Push notifications are working. See you at the rink!",
		URL:   "/",
	}
}
