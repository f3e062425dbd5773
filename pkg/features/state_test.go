package features

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore_GetAbsent(t *testing.T) {
	store := NewMemoryStateStore()
	state, err := store.Get(context.Background(), 1, "core")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestMemoryStateStore_CreateIfAbsent(t *testing.T) {
	store := NewMemoryStateStore()

	created, err := store.CreateIfAbsent(context.Background(), &State{
		OrganizationID: 1,
		FeatureID:      "core",
		Initialized:    true,
		Enabled:        true,
	})
	require.NoError(t, err)
	assert.True(t, created)

	// Second insert for the same pair is a no-op
	created, err = store.CreateIfAbsent(context.Background(), &State{
		OrganizationID: 1,
		FeatureID:      "core",
	})
	require.NoError(t, err)
	assert.False(t, created)

	state, err := store.Get(context.Background(), 1, "core")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.Initialized)
	assert.True(t, state.Enabled)
	assert.False(t, state.CreatedAt.IsZero())
}

func TestMemoryStateStore_SetEnabled(t *testing.T) {
	store := NewMemoryStateStore()
	_, err := store.CreateIfAbsent(context.Background(), &State{
		OrganizationID: 1,
		FeatureID:      "time-tracking",
		Initialized:    true,
		Enabled:        true,
	})
	require.NoError(t, err)

	require.NoError(t, store.SetEnabled(context.Background(), 1, "time-tracking", false))

	state, err := store.Get(context.Background(), 1, "time-tracking")
	require.NoError(t, err)
	assert.False(t, state.Enabled)
}

func TestMemoryStateStore_SetEnabled_MissingRecord(t *testing.T) {
	store := NewMemoryStateStore()
	err := store.SetEnabled(context.Background(), 1, "time-tracking", true)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestMemoryStateStore_ListByOrganization(t *testing.T) {
	store := NewMemoryStateStore()
	for _, featureID := range []string{"core", "availability"} {
		_, err := store.CreateIfAbsent(context.Background(), &State{
			OrganizationID: 1,
			FeatureID:      featureID,
			Initialized:    true,
			Enabled:        true,
		})
		require.NoError(t, err)
	}
	_, err := store.CreateIfAbsent(context.Background(), &State{
		OrganizationID: 2,
		FeatureID:      "core",
		Initialized:    true,
		Enabled:        true,
	})
	require.NoError(t, err)

	states, err := store.ListByOrganization(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, states, 2)
}
