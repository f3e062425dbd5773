package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Authorization metrics
	PermissionChecksTotal *prometheus.CounterVec
	RoleChecksTotal       *prometheus.CounterVec

	// Feature lifecycle metrics
	FeatureInitializationsTotal *prometheus.CounterVec
	FeatureTogglesTotal         *prometheus.CounterVec
	FeatureHookFailuresTotal    *prometheus.CounterVec

	// Event bus metrics
	EventsPublishedTotal   *prometheus.CounterVec
	SubscriberPanicsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		PermissionChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewd_permission_checks_total",
				Help: "Total permission evaluations by outcome",
			},
			[]string{"outcome"},
		),
		RoleChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewd_role_checks_total",
				Help: "Total role-floor checks by outcome",
			},
			[]string{"outcome"},
		),
		FeatureInitializationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewd_feature_initializations_total",
				Help: "Feature module initializations per feature",
			},
			[]string{"feature"},
		),
		FeatureTogglesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewd_feature_toggles_total",
				Help: "Feature enable/disable operations",
			},
			[]string{"feature", "action"},
		),
		FeatureHookFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewd_feature_hook_failures_total",
				Help: "Lifecycle hook failures per feature",
			},
			[]string{"feature", "hook"},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewd_events_published_total",
				Help: "Events published on the bus per event name",
			},
			[]string{"event"},
		),
		SubscriberPanicsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewd_subscriber_panics_total",
				Help: "Recovered panics in event subscribers per event name",
			},
			[]string{"event"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.PermissionChecksTotal,
		m.RoleChecksTotal,
		m.FeatureInitializationsTotal,
		m.FeatureTogglesTotal,
		m.FeatureHookFailuresTotal,
		m.EventsPublishedTotal,
		m.SubscriberPanicsTotal,
	)

	return m
}

// Handler returns an HTTP handler exposing the metrics registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPermissionCheck records a permission evaluation outcome
func (m *Metrics) RecordPermissionCheck(allowed bool) {
	m.PermissionChecksTotal.WithLabelValues(outcomeLabel(allowed)).Inc()
}

// RecordRoleCheck records a role-floor check outcome
func (m *Metrics) RecordRoleCheck(allowed bool) {
	m.RoleChecksTotal.WithLabelValues(outcomeLabel(allowed)).Inc()
}

// RecordFeatureInitialization records a feature initialization
func (m *Metrics) RecordFeatureInitialization(featureID string) {
	m.FeatureInitializationsTotal.WithLabelValues(featureID).Inc()
}

// RecordFeatureToggle records an enable/disable operation
func (m *Metrics) RecordFeatureToggle(featureID, action string) {
	m.FeatureTogglesTotal.WithLabelValues(featureID, action).Inc()
}

// RecordHookFailure records a lifecycle hook failure
func (m *Metrics) RecordHookFailure(featureID, hook string) {
	m.FeatureHookFailuresTotal.WithLabelValues(featureID, hook).Inc()
}

// RecordEventPublished records an event publication
func (m *Metrics) RecordEventPublished(event string) {
	m.EventsPublishedTotal.WithLabelValues(event).Inc()
}

// RecordSubscriberPanic records a recovered subscriber panic
func (m *Metrics) RecordSubscriberPanic(event string) {
	m.SubscriberPanicsTotal.WithLabelValues(event).Inc()
}

func outcomeLabel(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}
