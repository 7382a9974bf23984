package models

import (
	"encoding/json"
	"time"
)

// StoredToken is a persisted subscription row in notification_tokens.
// Token holds the exact bytes written by the registrar.
type StoredToken struct {
	ID        string          `json:"id" bson:"id"`
	UserID    string          `json:"user_id" bson:"userId"`
	Token     json.RawMessage `json:"token" bson:"-"`
	CreatedAt time.Time       `json:"created_at" bson:"createdAt"`
}
