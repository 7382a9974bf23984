package swruntime

import (
	"context"

	"puckline/models"
)

// Permission is the notification permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ShowOptions are the display options of a system notification.
type ShowOptions struct {
	Body  string
	Icon  string
	Badge string
	Tag   string
	Data  models.NotificationPayload
}

// Notifier shows system notifications.
type Notifier interface {
	Permission() Permission
	ShowNotification(ctx context.Context, title string, opts ShowOptions) error
}

// Notification is a notification the platform has shown.
type Notification interface {
	Data() models.NotificationPayload
	Close()
}

// WindowClient is an open browsing context under the worker's origin.
type WindowClient interface {
	URL() string
	Focus(ctx context.Context) error
}

// MatchOptions narrows Clients.MatchAll.
type MatchOptions struct {
	Type                string
	IncludeUncontrolled bool
}

// Clients enumerates and opens browsing contexts.
type Clients interface {
	MatchAll(ctx context.Context, opts MatchOptions) ([]WindowClient, error)
	OpenWindow(ctx context.Context, url string) error
}

// PushManager creates push subscriptions.
type PushManager interface {
	Subscribe(ctx context.Context, opts *models.SubscriptionOptions) (*Subscription, error)
	GetSubscription(ctx context.Context) (*Subscription, error)
}

// Platform bundles the host capabilities the worker uses.
type Platform struct {
	Origin      string
	Notifier    Notifier
	Clients     Clients
	PushManager PushManager
}
