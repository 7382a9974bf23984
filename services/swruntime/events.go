// Package swruntime models the browser's background worker: platform events
// bound to named channels, handlers that extend an event's lifetime with
// WaitUntil, and the notification and subscription handlers built on top.
package swruntime

import (
	"context"
	"errors"
	"sync"

	"puckline/models"
)

// Event channel names.
const (
	EventPush                   = "push"
	EventNotificationClick      = "notificationclick"
	EventNotificationClose      = "notificationclose"
	EventPushSubscriptionChange = "pushsubscriptionchange"
)

// Event is a single immutable record delivered by the platform.
type Event interface {
	Name() string
	WaitUntil(fn func(ctx context.Context) error)
	extension() *Extendable
}

// Extendable lets a handler keep the worker alive until async work settles.
type Extendable struct {
	mu   sync.Mutex
	ctx  context.Context
	wg   sync.WaitGroup
	errs []error
}

// WaitUntil runs fn in the background; the dispatch completion will not
// settle before fn returns.
func (e *Extendable) WaitUntil(fn func(ctx context.Context) error) {
	e.mu.Lock()
	ctx := e.ctx
	e.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := fn(ctx); err != nil {
			e.mu.Lock()
			e.errs = append(e.errs, err)
			e.mu.Unlock()
		}
	}()
}

func (e *Extendable) extension() *Extendable { return e }

func (e *Extendable) bind(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()
}

func (e *Extendable) settle() error {
	e.wg.Wait()
	e.mu.Lock()
	defer e.mu.Unlock()
	return errors.Join(e.errs...)
}

// PushEvent carries the decrypted push message data.
type PushEvent struct {
	Extendable
	Data []byte
}

func (*PushEvent) Name() string { return EventPush }

// NotificationClickEvent fires when the user activates a shown notification.
type NotificationClickEvent struct {
	Extendable
	Notification Notification
}

func (*NotificationClickEvent) Name() string { return EventNotificationClick }

// NotificationCloseEvent fires when the user dismisses a notification.
type NotificationCloseEvent struct {
	Extendable
	Notification Notification
}

func (*NotificationCloseEvent) Name() string { return EventNotificationClose }

// PushSubscriptionChangeEvent fires when the platform invalidates a subscription.
type PushSubscriptionChangeEvent struct {
	Extendable
	OldSubscription *Subscription
	NewSubscription *Subscription
}

func (*PushSubscriptionChangeEvent) Name() string { return EventPushSubscriptionChange }

// Subscription is a platform subscription together with the options it was created with.
type Subscription struct {
	models.PushSubscription
	Options *models.SubscriptionOptions
}
