package models

import (
	"encoding/json"
	"time"
)

// PushKeys carries the client's encryption material.
type PushKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh"`
	Auth   string `json:"auth" bson:"auth"`
}

// PushSubscription is the platform-standard subscription record.
type PushSubscription struct {
	Endpoint       string   `json:"endpoint" bson:"endpoint"`
	ExpirationTime *int64   `json:"expirationTime,omitempty" bson:"expirationTime,omitempty"`
	Keys           PushKeys `json:"keys" bson:"keys"`
}

// SubscriptionOptions are the options a subscription was created with.
// ApplicationServerKey is the base64url VAPID public key.
type SubscriptionOptions struct {
	UserVisibleOnly      bool   `json:"userVisibleOnly"`
	ApplicationServerKey string `json:"applicationServerKey"`
}

// Expired reports whether the subscription advertised an expiration that has passed.
func (s *PushSubscription) Expired(now time.Time) bool {
	if s == nil || s.ExpirationTime == nil {
		return false
	}
	return now.UnixMilli() >= *s.ExpirationTime
}

// SaveSubscriptionRequest is the body of a subscription upsert. Subscription
// is stored verbatim.
type SaveSubscriptionRequest struct {
	Subscription json.RawMessage `json:"subscription" binding:"required"`
}

// DeleteSubscriptionRequest identifies the device subscription to remove.
type DeleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}
