package swruntime

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var errNoPreviousOptions = errors.New("invalidated subscription carries no options")

// Resubscriber replaces a subscription the platform invalidated. The
// replacement lives only in worker memory; the Registrar persists it on the
// user's next visit.
type Resubscriber struct {
	push   PushManager
	logger *zap.Logger

	mu     sync.Mutex
	latest *Subscription
}

func NewResubscriber(push PushManager, logger *zap.Logger) *Resubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resubscriber{push: push, logger: logger}
}

func (r *Resubscriber) Register(d *Dispatcher) {
	d.On(EventPushSubscriptionChange, func(ctx context.Context, ev Event) {
		if e, ok := ev.(*PushSubscriptionChangeEvent); ok {
			r.Handle(ctx, e)
		}
	})
}

// Latest is the most recent replacement subscription, if any.
func (r *Resubscriber) Latest() *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Handle subscribes again with the options object of the old subscription.
// Failures are logged and never retried.
func (r *Resubscriber) Handle(_ context.Context, ev *PushSubscriptionChangeEvent) {
	ev.WaitUntil(func(ctx context.Context) error {
		if ev.OldSubscription == nil || ev.OldSubscription.Options == nil {
			r.logger.Error("Push subscription changed, cannot resubscribe", zap.Error(errNoPreviousOptions))
			return nil
		}

		sub, err := r.push.Subscribe(ctx, ev.OldSubscription.Options)
		if err != nil {
			r.logger.Error("Failed to resubscribe after subscription change",
				zap.String("oldEndpoint", ev.OldSubscription.Endpoint),
				zap.Error(err),
			)
			return nil
		}

		r.mu.Lock()
		r.latest = sub
		r.mu.Unlock()
		r.logger.Info("Resubscribed after subscription change",
			zap.String("oldEndpoint", ev.OldSubscription.Endpoint),
			zap.String("newEndpoint", sub.Endpoint),
		)
		return nil
	})
}
