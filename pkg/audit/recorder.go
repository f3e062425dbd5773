package audit

import (
	"context"

	"github.com/crewplane/crewd/pkg/events"
	"github.com/crewplane/crewd/pkg/observability"
)

// auditedEvents are the bus events the recorder persists
var auditedEvents = []string{
	events.EventPermissionDenied,
	events.EventFeatureInitialized,
	events.EventFeatureEnabled,
	events.EventFeatureDisabled,
	events.EventFeatureHookFailed,
	events.EventOrgTierChanged,
}

// Attach subscribes an audit recorder to the bus and returns a detach
// function that removes every subscription.
func Attach(bus events.Bus, store *Store, logger *observability.Logger) func() {
	recorder := &recorder{store: store, logger: logger}

	unsubscribes := make([]func(), 0, len(auditedEvents))
	for _, name := range auditedEvents {
		unsubscribes = append(unsubscribes, bus.Subscribe(name, recorder.handle))
	}

	return func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}
}

type recorder struct {
	store  *Store
	logger *observability.Logger
}

func (r *recorder) handle(_ context.Context, event events.Event) {
	record := &Record{
		Type:           event.Name,
		OrganizationID: asInt64(event.Data["organization_id"]),
		UserID:         asInt64(event.Data["user_id"]),
		FeatureID:      asString(event.Data["feature_id"]),
		Resource:       asString(event.Data["resource"]),
		Permission:     asString(event.Data["permission"]),
		Details:        event.Data,
		CreatedAt:      event.Timestamp,
	}
	r.store.Add(record)
	r.logger.WithFields(map[string]interface{}{
		"type":            record.Type,
		"organization_id": record.OrganizationID,
	}).Debug("audit record stored")
}

// asInt64 tolerates the numeric types an event payload can carry: native
// ints from the local bus, float64 after a JSON round trip on the redis bus.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
