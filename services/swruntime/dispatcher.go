package swruntime

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Handler reacts to one event. Long-running work goes through event.WaitUntil.
type Handler func(ctx context.Context, event Event)

// Completion settles once the handlers returned and every extension settled.
type Completion struct {
	done chan struct{}
	err  error
}

// Done is closed when the event is fully handled.
func (c *Completion) Done() <-chan struct{} { return c.done }

// Wait blocks until completion and returns the joined extension errors.
func (c *Completion) Wait() error {
	<-c.done
	return c.err
}

// Dispatcher routes platform events to the handlers registered for their channel.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{handlers: make(map[string][]Handler), logger: logger}
}

// On registers h for the named event channel.
func (d *Dispatcher) On(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], h)
}

// Dispatch delivers event to its handlers in registration order.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) *Completion {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[event.Name()]...)
	d.mu.RUnlock()

	ext := event.extension()
	ext.bind(ctx)

	c := &Completion{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		for _, h := range handlers {
			d.run(ctx, h, event)
		}
		c.err = ext.settle()
		if c.err != nil {
			d.logger.Warn("Event extensions failed", zap.String("event", event.Name()), zap.Error(c.err))
		}
	}()
	return c
}

func (d *Dispatcher) run(ctx context.Context, h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Event handler panicked",
				zap.String("event", event.Name()),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	h(ctx, event)
}
