package features

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/crewplane/crewd/pkg/events"
	"github.com/crewplane/crewd/pkg/observability"
	"github.com/crewplane/crewd/pkg/orgs"
)

// Registry is the process-wide catalog of feature modules. It is
// constructed once at startup and passed to consumers explicitly; there is
// no package-level singleton.
//
// In multi-instance deployments each instance holds its own Registry;
// cross-instance consistency of feature state comes from a shared
// StateStore (PostgresStateStore), not from the Registry itself.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
	order   []string

	store   StateStore
	bus     events.Bus
	logger  *observability.Logger
	metrics *observability.Metrics

	initGroup singleflight.Group
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryMetrics attaches metrics recording to the registry
func WithRegistryMetrics(metrics *observability.Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = metrics
	}
}

// NewRegistry creates an empty registry
func NewRegistry(store StateStore, bus events.Bus, logger *observability.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		modules: make(map[string]*Module),
		store:   store,
		bus:     bus,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a module to the catalog. Re-registering an existing id
// overwrites the previous entry (last write wins) so that idempotent
// startup paths stay safe; the original registration order is preserved.
func (r *Registry) Register(module *Module) error {
	if err := module.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[module.ID]; exists {
		r.logger.WithField("feature", module.ID).Warn("feature module re-registered, overwriting previous entry")
	} else {
		r.order = append(r.order, module.ID)
	}
	r.modules[module.ID] = module

	return nil
}

// Module returns the module for id
func (r *Registry) Module(id string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	module, ok := r.modules[id]
	return module, ok
}

// AllModules returns every registered module in registration order
func (r *Registry) AllModules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Module, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.modules[id])
	}
	return out
}

// AvailableForTier reports whether the feature is available at the tier.
// Unknown features are simply unavailable, never an error.
func (r *Registry) AvailableForTier(featureID string, tier orgs.Tier) bool {
	module, ok := r.Module(featureID)
	if !ok {
		return false
	}
	return module.AvailableForTier(tier)
}

// ModulesForTier returns the modules available at the tier, in registration
// order.
func (r *Registry) ModulesForTier(tier orgs.Tier) []*Module {
	all := r.AllModules()
	out := make([]*Module, 0, len(all))
	for _, module := range all {
		if module.AvailableForTier(tier) {
			out = append(out, module)
		}
	}
	return out
}

// InitializeOrganizationFeatures creates state and runs the initialize hook
// for every module available to the organization's tier that has no state
// yet. Idempotent: a pair that already has state is skipped, and the
// underlying CreateIfAbsent guarantees a hook runs at most once per pair
// even under concurrent callers.
//
// Hook failures are logged and do not abort the sweep; the returned error
// reflects only the inability to read the organization's tier.
func (r *Registry) InitializeOrganizationFeatures(ctx context.Context, org *orgs.Organization) error {
	tier, err := orgs.ResolveTier(org)
	if err != nil {
		return fmt.Errorf("cannot initialize features: %w", err)
	}

	// Collapse concurrent sweeps for the same organization in-process.
	_, err, _ = r.initGroup.Do(strconv.FormatInt(org.ID, 10), func() (interface{}, error) {
		r.initializeTier(ctx, org.ID, tier)
		return nil, nil
	})
	return err
}

func (r *Registry) initializeTier(ctx context.Context, organizationID int64, tier orgs.Tier) {
	for _, module := range r.ModulesForTier(tier) {
		created, err := r.store.CreateIfAbsent(ctx, &State{
			OrganizationID: organizationID,
			FeatureID:      module.ID,
			Initialized:    true,
			Enabled:        true,
		})
		if err != nil {
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"organization_id": organizationID,
				"feature":         module.ID,
			}).Error("failed to create feature state, skipping module")
			continue
		}
		if !created {
			continue
		}

		if module.Initialize != nil {
			if err := r.runHook(ctx, organizationID, module.ID, "initialize", module.Initialize); err != nil {
				// State stays created: initialization runs at most once per
				// pair regardless of the hook outcome.
				continue
			}
		}

		if r.metrics != nil {
			r.metrics.RecordFeatureInitialization(module.ID)
		}
		r.bus.Publish(ctx, events.EventFeatureInitialized, map[string]any{
			"organization_id": organizationID,
			"feature_id":      module.ID,
		})
	}
}

// EnableFeature enables a user-configurable feature for the organization
// and runs its OnEnable hook. Rejected with ErrNotConfigurable for fixed
// modules and ErrNotInitialized when no state exists yet.
func (r *Registry) EnableFeature(ctx context.Context, organizationID int64, featureID string) error {
	return r.setEnabled(ctx, organizationID, featureID, true)
}

// DisableFeature disables a user-configurable feature for the organization
// and runs its OnDisable hook. A non-configurable module is always enabled
// and can never be disabled.
func (r *Registry) DisableFeature(ctx context.Context, organizationID int64, featureID string) error {
	return r.setEnabled(ctx, organizationID, featureID, false)
}

func (r *Registry) setEnabled(ctx context.Context, organizationID int64, featureID string, enabled bool) error {
	module, ok := r.Module(featureID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrModuleNotFound, featureID)
	}
	if !module.UserConfigurable {
		return fmt.Errorf("%w: %q", ErrNotConfigurable, featureID)
	}

	state, err := r.store.Get(ctx, organizationID, featureID)
	if err != nil {
		return fmt.Errorf("failed to read feature state: %w", err)
	}
	if state == nil {
		return fmt.Errorf("%w: %q for organization %d", ErrNotInitialized, featureID, organizationID)
	}

	if err := r.store.SetEnabled(ctx, organizationID, featureID, enabled); err != nil {
		return fmt.Errorf("failed to update feature state: %w", err)
	}

	// Hooks run after the state flip; a hook failure is logged but does not
	// roll the toggle back.
	action := "disable"
	eventName := events.EventFeatureDisabled
	if enabled {
		action = "enable"
		eventName = events.EventFeatureEnabled
		if module.OnEnable != nil {
			_ = r.runHook(ctx, organizationID, featureID, "on_enable", module.OnEnable)
		}
	} else if module.OnDisable != nil {
		_ = r.runHook(ctx, organizationID, featureID, "on_disable", module.OnDisable)
	}

	if r.metrics != nil {
		r.metrics.RecordFeatureToggle(featureID, action)
	}
	r.bus.Publish(ctx, eventName, map[string]any{
		"organization_id": organizationID,
		"feature_id":      featureID,
	})

	return nil
}

// IsFeatureEnabled reports whether the feature is usable by the
// organization: available at its tier, initialized, and enabled.
func (r *Registry) IsFeatureEnabled(ctx context.Context, org *orgs.Organization, featureID string) (bool, error) {
	tier, err := orgs.ResolveTier(org)
	if err != nil {
		return false, err
	}
	if !r.AvailableForTier(featureID, tier) {
		return false, nil
	}
	state, err := r.store.Get(ctx, org.ID, featureID)
	if err != nil {
		return false, fmt.Errorf("failed to read feature state: %w", err)
	}
	return state != nil && state.Initialized && state.Enabled, nil
}

// FeatureStates returns the stored states for an organization
func (r *Registry) FeatureStates(ctx context.Context, organizationID int64) ([]*State, error) {
	return r.store.ListByOrganization(ctx, organizationID)
}

// runHook invokes a lifecycle hook with panic recovery. Failures are logged
// with the organization and feature id and published for audit; they never
// propagate past the registry boundary.
func (r *Registry) runHook(ctx context.Context, organizationID int64, featureID, hookName string, hook func(context.Context, int64) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s hook: %v", hookName, rec)
		}
		if err == nil {
			return
		}
		if r.metrics != nil {
			r.metrics.RecordHookFailure(featureID, hookName)
		}
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"organization_id": organizationID,
			"feature":         featureID,
			"hook":            hookName,
		}).Error("feature lifecycle hook failed")
		r.bus.Publish(ctx, events.EventFeatureHookFailed, map[string]any{
			"organization_id": organizationID,
			"feature_id":      featureID,
			"hook":            hookName,
			"error":           err.Error(),
		})
	}()

	err = hook(ctx, organizationID)
	return err
}
