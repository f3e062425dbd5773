package events

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisBus(t *testing.T) *RedisBus {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBus(client, testLogger())
}

func TestRedisBus_PublishSubscribe(t *testing.T) {
	bus := newTestRedisBus(t)
	defer bus.Close()

	var wg sync.WaitGroup
	wg.Add(1)

	var received atomic.Value
	unsubscribe := bus.Subscribe(EventFeatureEnabled, func(_ context.Context, e Event) {
		received.Store(e)
		wg.Done()
	})
	defer unsubscribe()

	// Subscription setup is asynchronous on the server side
	require.Eventually(t, func() bool {
		return bus.HasSubscribers(EventFeatureEnabled)
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	bus.Publish(context.Background(), EventFeatureEnabled, map[string]any{
		"organization_id": float64(7),
		"feature":         "api-access",
	})

	waitOrFail(t, &wg)

	event := received.Load().(Event)
	assert.Equal(t, EventFeatureEnabled, event.Name)
	assert.NotEmpty(t, event.ID)
	// JSON numbers decode as float64
	assert.Equal(t, float64(7), event.Data["organization_id"])
	assert.Equal(t, "api-access", event.Data["feature"])
}

func TestRedisBus_Unsubscribe(t *testing.T) {
	bus := newTestRedisBus(t)
	defer bus.Close()

	unsubscribe := bus.Subscribe(EventFeatureDisabled, func(context.Context, Event) {})
	assert.True(t, bus.HasSubscribers(EventFeatureDisabled))

	unsubscribe()
	assert.False(t, bus.HasSubscribers(EventFeatureDisabled))
}

func TestRedisBus_ClearAllEvents(t *testing.T) {
	bus := newTestRedisBus(t)

	bus.Subscribe(EventFeatureEnabled, func(context.Context, Event) {})
	bus.Subscribe(EventOrgTierChanged, func(context.Context, Event) {})

	bus.ClearAllEvents()
	assert.False(t, bus.HasSubscribers(EventFeatureEnabled))
	assert.False(t, bus.HasSubscribers(EventOrgTierChanged))
}
