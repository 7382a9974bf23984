package swruntime

import (
	"context"
	"errors"
	"sync"

	"puckline/models"
)

type shown struct {
	title string
	opts  ShowOptions
}

type fakeNotifier struct {
	mu         sync.Mutex
	permission Permission
	shown      []shown
	err        error
}

func (f *fakeNotifier) Permission() Permission { return f.permission }

func (f *fakeNotifier) ShowNotification(_ context.Context, title string, opts ShowOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, shown{title: title, opts: opts})
	return f.err
}

func (f *fakeNotifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.shown)
}

type fakeNotification struct {
	data   models.NotificationPayload
	closed int
}

func (n *fakeNotification) Data() models.NotificationPayload { return n.data }
func (n *fakeNotification) Close() { n.closed++ }

type fakeWindow struct {
	url     string
	focused int
}

func (w *fakeWindow) URL() string { return w.url }
func (w *fakeWindow) Focus(context.Context) error {
	w.focused++
	return nil
}

type fakeClients struct {
	windows   []*fakeWindow
	lastMatch MatchOptions
	opened    []string
}

func (c *fakeClients) MatchAll(_ context.Context, opts MatchOptions) ([]WindowClient, error) {
	c.lastMatch = opts
	out := make([]WindowClient, 0, len(c.windows))
	for _, w := range c.windows {
		out = append(out, w)
	}
	return out, nil
}

func (c *fakeClients) OpenWindow(_ context.Context, url string) error {
	c.opened = append(c.opened, url)
	return nil
}

type fakePushManager struct {
	current    *Subscription
	next       *Subscription
	err        error
	subscribed []*models.SubscriptionOptions
}

func (p *fakePushManager) Subscribe(_ context.Context, opts *models.SubscriptionOptions) (*Subscription, error) {
	p.subscribed = append(p.subscribed, opts)
	if p.err != nil {
		return nil, p.err
	}
	sub := *p.next
	sub.Options = opts
	p.current = &sub
	return &sub, nil
}

func (p *fakePushManager) GetSubscription(context.Context) (*Subscription, error) {
	return p.current, nil
}

var errPlatform = errors.New("push service unavailable")

func subscription(endpoint string) *Subscription {
	return &Subscription{PushSubscription: models.PushSubscription{
		Endpoint: endpoint,
		Keys:     models.PushKeys{P256dh: "BNcR", Auth: "tBHI"},
	}}
}
