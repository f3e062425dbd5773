package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/crewplane/crewd/pkg/async"
	"github.com/crewplane/crewd/pkg/observability"
)

const channelPrefix = "crewd:events:"

// RedisBus is the distributed Bus implementation backed by redis pub/sub.
// Publishers and subscribers on different instances see the same events.
//
// HasSubscribers, ClearEvent, and ClearAllEvents operate on the in-process
// subscriber view only; remote instances manage their own subscriptions.
type RedisBus struct {
	client  *redis.Client
	logger  *observability.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	subs   map[string]map[int64]*redisSubscription
	nextID int64
}

type redisSubscription struct {
	pubsub *redis.PubSub
}

// RedisBusOption configures a RedisBus
type RedisBusOption func(*RedisBus)

// WithRedisMetrics attaches metrics recording to the bus
func WithRedisMetrics(metrics *observability.Metrics) RedisBusOption {
	return func(b *RedisBus) {
		b.metrics = metrics
	}
}

// NewRedisBus creates a redis-backed bus on an existing client
func NewRedisBus(client *redis.Client, logger *observability.Logger, opts ...RedisBusOption) *RedisBus {
	b := &RedisBus{
		client: client,
		logger: logger,
		subs:   make(map[string]map[int64]*redisSubscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func channel(name string) string {
	return channelPrefix + name
}

// Publish marshals the event and publishes it on the redis channel for
// name. Fire-and-forget: transport errors are logged, never returned.
func (b *RedisBus) Publish(_ context.Context, name string, data map[string]any) {
	event := Event{
		ID:        uuid.NewString(),
		Name:      name,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.WithError(err).WithField("event", name).Error("failed to marshal event")
		return
	}

	if b.metrics != nil {
		b.metrics.RecordEventPublished(name)
	}

	async.SafeGo(context.Background(), dispatchTimeout, "redis event publish: "+name, func(ctx context.Context) error {
		return b.client.Publish(ctx, channel(name), payload).Err()
	})
}

// Subscribe opens a redis subscription for name and dispatches incoming
// events to the handler until unsubscribed.
func (b *RedisBus) Subscribe(name string, handler Handler) func() {
	pubsub := b.client.Subscribe(context.Background(), channel(name))
	sub := &redisSubscription{pubsub: pubsub}

	b.mu.Lock()
	if b.subs[name] == nil {
		b.subs[name] = make(map[int64]*redisSubscription)
	}
	b.nextID++
	id := b.nextID
	b.subs[name][id] = sub
	b.mu.Unlock()

	go b.receive(name, pubsub, handler)

	return func() {
		b.mu.Lock()
		if subs, ok := b.subs[name]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.subs, name)
			}
		}
		b.mu.Unlock()
		if err := pubsub.Close(); err != nil {
			b.logger.WithError(err).WithField("event", name).Warn("failed to close redis subscription")
		}
	}
}

// receive pumps messages from the redis subscription into the handler.
// Returns when the subscription is closed.
func (b *RedisBus) receive(name string, pubsub *redis.PubSub, handler Handler) {
	for msg := range pubsub.Channel() {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			b.logger.WithError(err).WithField("event", name).Warn("dropping undecodable event payload")
			continue
		}
		b.dispatch(name, event, handler)
	}
}

func (b *RedisBus) dispatch(name string, event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.RecordSubscriberPanic(name)
			}
			b.logger.WithField("event", name).Errorf("subscriber panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	handler(ctx, event)
}

// HasSubscribers reports whether any in-process handler is registered for
// name.
func (b *RedisBus) HasSubscribers(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[name]) > 0
}

// ClearEvent closes all in-process subscriptions for name
func (b *RedisBus) ClearEvent(name string) {
	b.mu.Lock()
	subs := b.subs[name]
	delete(b.subs, name)
	b.mu.Unlock()

	for _, sub := range subs {
		if err := sub.pubsub.Close(); err != nil {
			b.logger.WithError(err).WithField("event", name).Warn("failed to close redis subscription")
		}
	}
}

// ClearAllEvents closes every in-process subscription
func (b *RedisBus) ClearAllEvents() {
	b.mu.Lock()
	all := b.subs
	b.subs = make(map[string]map[int64]*redisSubscription)
	b.mu.Unlock()

	for name, subs := range all {
		for _, sub := range subs {
			if err := sub.pubsub.Close(); err != nil {
				b.logger.WithError(err).WithField("event", name).Warn("failed to close redis subscription")
			}
		}
	}
}

// Close closes all subscriptions. The underlying client is owned by the
// caller and stays open.
func (b *RedisBus) Close() error {
	b.ClearAllEvents()
	return nil
}
