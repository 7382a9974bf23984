package swruntime

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"puckline/services/push"

	"go.uber.org/zap"
)

// ReceiverState is the display state of the Receiver.
type ReceiverState int

const (
	StateIdle ReceiverState = iota
	StatePayloadReceived
	StateDisplaying
)

func (s ReceiverState) String() string {
	switch s {
	case StatePayloadReceived:
		return "payload_received"
	case StateDisplaying:
		return "displaying"
	default:
		return "idle"
	}
}

// Outcome is what happened to a shown notification.
type Outcome string

const (
	OutcomeDismissed Outcome = "dismissed"
	OutcomeClicked   Outcome = "clicked"
)

// Receiver displays delivered pushes and handles interaction with them.
type Receiver struct {
	platform Platform
	icon     string
	logger   *zap.Logger

	mu       sync.Mutex
	state    ReceiverState
	outcomes []Outcome
}

func NewReceiver(platform Platform, icon string, logger *zap.Logger) *Receiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Receiver{platform: platform, icon: icon, logger: logger}
}

// Register binds the receiver to the push and notification channels.
func (r *Receiver) Register(d *Dispatcher) {
	d.On(EventPush, func(ctx context.Context, ev Event) {
		if e, ok := ev.(*PushEvent); ok {
			r.HandlePush(ctx, e)
		}
	})
	d.On(EventNotificationClick, func(ctx context.Context, ev Event) {
		if e, ok := ev.(*NotificationClickEvent); ok {
			r.HandleClick(ctx, e)
		}
	})
	d.On(EventNotificationClose, func(ctx context.Context, ev Event) {
		if _, ok := ev.(*NotificationCloseEvent); ok {
			r.record(OutcomeDismissed)
		}
	})
}

// State reports the current display state.
func (r *Receiver) State() ReceiverState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Outcomes lists how shown notifications ended, in order.
func (r *Receiver) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.outcomes...)
}

func (r *Receiver) setState(s ReceiverState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Receiver) record(o Outcome) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
}

// HandlePush shows the delivered payload when permission is granted.
// Without permission the payload is dropped silently.
func (r *Receiver) HandlePush(_ context.Context, ev *PushEvent) {
	if r.platform.Notifier.Permission() != PermissionGranted {
		ReceivedTotal.WithLabelValues("dropped").Inc()
		return
	}
	r.setState(StatePayloadReceived)
	payload := push.DecodePayload(ev.Data)

	r.setState(StateDisplaying)
	ev.WaitUntil(func(ctx context.Context) error {
		defer r.setState(StateIdle)
		err := r.platform.Notifier.ShowNotification(ctx, payload.Title, ShowOptions{
			Body:  payload.Body,
			Icon:  r.icon,
			Badge: r.icon,
			Data:  payload,
		})
		if err != nil {
			ReceivedTotal.WithLabelValues("failed").Inc()
			r.logger.Error("Failed to show notification", zap.Error(err))
			return fmt.Errorf("Receiver.HandlePush: %w", err)
		}
		ReceivedTotal.WithLabelValues("displayed").Inc()
		return nil
	})
}

// HandleClick closes the notification, then focuses the first window already
// at the target URL or opens exactly one new window there.
func (r *Receiver) HandleClick(_ context.Context, ev *NotificationClickEvent) {
	ev.Notification.Close()
	r.record(OutcomeClicked)

	target := r.resolve(ev.Notification.Data().URL)
	ev.WaitUntil(func(ctx context.Context) error {
		windows, err := r.platform.Clients.MatchAll(ctx, MatchOptions{Type: "window", IncludeUncontrolled: true})
		if err != nil {
			r.logger.Warn("Failed to enumerate windows, opening a new one", zap.Error(err))
			windows = nil
		}
		for _, w := range windows {
			if w.URL() == target {
				ClicksTotal.WithLabelValues("focus").Inc()
				if err := w.Focus(ctx); err != nil {
					r.logger.Error("Failed to focus window", zap.String("url", target), zap.Error(err))
					return fmt.Errorf("Receiver.HandleClick: focus: %w", err)
				}
				return nil
			}
		}
		ClicksTotal.WithLabelValues("open").Inc()
		if err := r.platform.Clients.OpenWindow(ctx, target); err != nil {
			r.logger.Error("Failed to open window", zap.String("url", target), zap.Error(err))
			return fmt.Errorf("Receiver.HandleClick: open: %w", err)
		}
		return nil
	})
}

// resolve turns a relative notification URL into an absolute one under the
// worker origin so it can be compared with window URLs.
func (r *Receiver) resolve(raw string) string {
	if raw == "" {
		raw = push.DefaultURL
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	base, err := url.Parse(r.platform.Origin)
	if err != nil || base.Scheme == "" {
		return raw
	}
	return base.ResolveReference(ref).String()
}
