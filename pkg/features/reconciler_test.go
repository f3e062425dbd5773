package features

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewplane/crewd/pkg/observability"
	"github.com/crewplane/crewd/pkg/orgs"
)

func TestReconciler_Sweep(t *testing.T) {
	registry, _ := newTestRegistry(t)
	require.NoError(t, registry.Register(&Module{
		ID:             "core",
		Name:           "Core",
		AvailableTiers: orgs.AllTiers(),
	}))

	directory := orgs.NewMemoryDirectory()
	directory.Put(&orgs.Organization{ID: 1, Tier: orgs.Tier1, Status: orgs.StatusActive})
	directory.Put(&orgs.Organization{ID: 2, Tier: orgs.Tier2, Status: orgs.StatusActive})
	directory.Put(&orgs.Organization{ID: 3, Tier: orgs.Tier3, Status: orgs.StatusSuspended})

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	reconciler := NewReconciler(registry, directory, logger, time.Minute)

	reconciler.Sweep()

	for _, organizationID := range []int64{1, 2} {
		states, err := registry.FeatureStates(context.Background(), organizationID)
		require.NoError(t, err)
		assert.Len(t, states, 1, "organization %d", organizationID)
	}

	// Suspended organizations are not swept
	states, err := registry.FeatureStates(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestReconciler_Sweep_BadTierDoesNotStopPass(t *testing.T) {
	registry, _ := newTestRegistry(t)
	require.NoError(t, registry.Register(&Module{
		ID:             "core",
		Name:           "Core",
		AvailableTiers: orgs.AllTiers(),
	}))

	directory := orgs.NewMemoryDirectory()
	directory.Put(&orgs.Organization{ID: 1, Tier: orgs.Tier("gold"), Status: orgs.StatusActive})
	directory.Put(&orgs.Organization{ID: 2, Tier: orgs.Tier1, Status: orgs.StatusActive})

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	reconciler := NewReconciler(registry, directory, logger, time.Minute)

	reconciler.Sweep()

	states, err := registry.FeatureStates(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, states, 1)
}

func TestReconciler_StartStop(t *testing.T) {
	registry, _ := newTestRegistry(t)
	directory := orgs.NewMemoryDirectory()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)

	reconciler := NewReconciler(registry, directory, logger, time.Hour)
	require.NoError(t, reconciler.Start())
	reconciler.Stop()
}
