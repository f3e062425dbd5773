package events

import (
	"context"
	"time"
)

// Event names published by the core. Consumers subscribe by exact name.
const (
	EventPermissionDenied   = "authz.permission_denied"
	EventFeatureInitialized = "feature.initialized"
	EventFeatureEnabled     = "feature.enabled"
	EventFeatureDisabled    = "feature.disabled"
	EventFeatureHookFailed  = "feature.hook_failed"
	EventOrgTierChanged     = "org.tier_changed"
)

// Event is the envelope delivered to subscribers
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Handler consumes a delivered event. Handlers run outside the publisher's
// call path; a panic is recovered and logged, never propagated to the
// publisher or to sibling subscribers.
type Handler func(ctx context.Context, event Event)

// Bus is the publish/subscribe abstraction. Publishing is fire-and-forget:
// it never blocks on subscriber completion and delivery to in-process
// subscribers is at-least-once.
type Bus interface {
	// Publish delivers the event asynchronously to all current subscribers
	// of name. Publishing with zero subscribers is a no-op.
	Publish(ctx context.Context, name string, data map[string]any)

	// Subscribe registers a handler for name and returns an unsubscribe
	// function.
	Subscribe(name string, handler Handler) (unsubscribe func())

	// HasSubscribers reports whether any in-process handler is registered
	// for name.
	HasSubscribers(name string) bool

	// ClearEvent removes all in-process handlers for name
	ClearEvent(name string)

	// ClearAllEvents removes every in-process handler
	ClearAllEvents()

	// Close releases transport resources. The bus must not be used after
	// Close.
	Close() error
}
