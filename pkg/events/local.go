package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crewplane/crewd/pkg/async"
	"github.com/crewplane/crewd/pkg/observability"
)

// dispatchTimeout bounds a single subscriber invocation. Handlers that
// ignore their context can still hang; that is a bug in the handler, not a
// supported state.
const dispatchTimeout = 30 * time.Second

// LocalBus is the in-process Bus implementation for single-instance
// deployments. Each subscriber runs on its own goroutine per event.
type LocalBus struct {
	mu      sync.RWMutex
	subs    map[string]map[int64]Handler
	nextID  int64
	logger  *observability.Logger
	metrics *observability.Metrics
}

// LocalBusOption configures a LocalBus
type LocalBusOption func(*LocalBus)

// WithLocalMetrics attaches metrics recording to the bus
func WithLocalMetrics(metrics *observability.Metrics) LocalBusOption {
	return func(b *LocalBus) {
		b.metrics = metrics
	}
}

// NewLocalBus creates an in-process bus
func NewLocalBus(logger *observability.Logger, opts ...LocalBusOption) *LocalBus {
	b := &LocalBus{
		subs:   make(map[string]map[int64]Handler),
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers the event to all current subscribers without blocking.
// Subscriber panics are recovered inside the dispatch goroutine.
func (b *LocalBus) Publish(_ context.Context, name string, data map[string]any) {
	event := Event{
		ID:        uuid.NewString(),
		Name:      name,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[name]))
	for _, h := range b.subs[name] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	if b.metrics != nil {
		b.metrics.RecordEventPublished(name)
	}

	for _, handler := range handlers {
		handler := handler
		// Dispatch detaches from the request context: delivery must not be
		// cancelled by the publisher returning.
		async.SafeGo(context.Background(), dispatchTimeout, "event dispatch: "+name, func(ctx context.Context) error {
			defer func() {
				if r := recover(); r != nil {
					if b.metrics != nil {
						b.metrics.RecordSubscriberPanic(name)
					}
					b.logger.WithField("event", name).Errorf("subscriber panic: %v", r)
				}
			}()
			handler(ctx, event)
			return nil
		})
	}
}

// Subscribe registers a handler and returns its unsubscribe function
func (b *LocalBus) Subscribe(name string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[name] == nil {
		b.subs[name] = make(map[int64]Handler)
	}
	b.nextID++
	id := b.nextID
	b.subs[name][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if handlers, ok := b.subs[name]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.subs, name)
			}
		}
	}
}

// HasSubscribers reports whether any handler is registered for name
func (b *LocalBus) HasSubscribers(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name]) > 0
}

// ClearEvent removes all handlers for name
func (b *LocalBus) ClearEvent(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, name)
}

// ClearAllEvents removes every handler
func (b *LocalBus) ClearAllEvents() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string]map[int64]Handler)
}

// Close clears all handlers
func (b *LocalBus) Close() error {
	b.ClearAllEvents()
	return nil
}
