package features

import (
	"context"

	"github.com/crewplane/crewd/pkg/observability"
	"github.com/crewplane/crewd/pkg/orgs"
)

// Built-in feature ids
const (
	FeatureCore              = "core"
	FeatureStaffScheduling   = "staff-scheduling"
	FeatureAvailability      = "availability"
	FeatureTimeTracking      = "time-tracking"
	FeatureEventCoordination = "event-coordination"
	FeatureAdvancedReporting = "advanced-reporting"
	FeatureWhiteLabel        = "white-label"
	FeatureAPIAccess         = "api-access"
)

// BuiltinModules returns the platform's built-in feature catalog. The core
// module is not user-configurable: it can never be disabled.
func BuiltinModules(logger *observability.Logger) []*Module {
	return []*Module{
		{
			ID:               FeatureCore,
			Name:             "Core Platform",
			Description:      "Accounts, organizations, and base workforce records",
			AvailableTiers:   orgs.AllTiers(),
			UserConfigurable: false,
			Initialize: func(ctx context.Context, organizationID int64) error {
				logger.WithField("organization_id", organizationID).Info("core platform initialized")
				return nil
			},
		},
		{
			ID:               FeatureStaffScheduling,
			Name:             "Staff Scheduling",
			Description:      "Shift planning and assignment for leased staff",
			AvailableTiers:   orgs.AllTiers(),
			UserConfigurable: true,
			Initialize: func(ctx context.Context, organizationID int64) error {
				logger.WithField("organization_id", organizationID).Info("seeded default scheduling settings")
				return nil
			},
		},
		{
			ID:               FeatureAvailability,
			Name:             "Agent Availability",
			Description:      "Agent-submitted availability windows",
			AvailableTiers:   orgs.AllTiers(),
			UserConfigurable: true,
		},
		{
			ID:               FeatureTimeTracking,
			Name:             "Time Tracking",
			Description:      "Clock-in/out and timesheet capture",
			AvailableTiers:   []orgs.Tier{orgs.Tier1, orgs.Tier3},
			UserConfigurable: true,
		},
		{
			ID:               FeatureEventCoordination,
			Name:             "Event Coordination",
			Description:      "Client event requests and booking workflows",
			AvailableTiers:   []orgs.Tier{orgs.Tier2, orgs.Tier3},
			UserConfigurable: true,
		},
		{
			ID:               FeatureAdvancedReporting,
			Name:             "Advanced Reporting",
			Description:      "Cross-location analytics and exports",
			AvailableTiers:   []orgs.Tier{orgs.Tier2, orgs.Tier3},
			UserConfigurable: true,
		},
		{
			ID:               FeatureWhiteLabel,
			Name:             "White Label",
			Description:      "Custom branding for self-service tenants",
			AvailableTiers:   []orgs.Tier{orgs.Tier3},
			UserConfigurable: true,
		},
		{
			ID:               FeatureAPIAccess,
			Name:             "API Access",
			Description:      "Tenant API tokens and outbound integrations",
			AvailableTiers:   []orgs.Tier{orgs.Tier3},
			UserConfigurable: true,
		},
	}
}

// RegisterBuiltins registers the built-in catalog on the registry
func RegisterBuiltins(registry *Registry, logger *observability.Logger) error {
	for _, module := range BuiltinModules(logger) {
		if err := registry.Register(module); err != nil {
			return err
		}
	}
	return nil
}
