package features

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStateStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStateStore(db), mock
}

func stateColumns() []string {
	return []string{"organization_id", "feature_id", "initialized", "enabled", "created_at", "updated_at"}
}

func TestPostgresStateStore_Get(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT organization_id, feature_id").
		WithArgs(int64(1), "time-tracking").
		WillReturnRows(sqlmock.NewRows(stateColumns()).
			AddRow(int64(1), "time-tracking", true, true, now, now))

	state, err := store.Get(context.Background(), 1, "time-tracking")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(1), state.OrganizationID)
	assert.Equal(t, "time-tracking", state.FeatureID)
	assert.True(t, state.Enabled)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStateStore_Get_Absent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT organization_id, feature_id").
		WithArgs(int64(1), "time-tracking").
		WillReturnRows(sqlmock.NewRows(stateColumns()))

	state, err := store.Get(context.Background(), 1, "time-tracking")
	require.NoError(t, err)
	assert.Nil(t, state)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStateStore_CreateIfAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO organization_features").
		WithArgs(int64(1), "core", true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := store.CreateIfAbsent(context.Background(), &State{
		OrganizationID: 1,
		FeatureID:      "core",
		Initialized:    true,
		Enabled:        true,
	})
	require.NoError(t, err)
	assert.True(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStateStore_CreateIfAbsent_Conflict(t *testing.T) {
	store, mock := newMockStore(t)

	// ON CONFLICT DO NOTHING reports zero affected rows
	mock.ExpectExec("INSERT INTO organization_features").
		WithArgs(int64(1), "core", true, true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := store.CreateIfAbsent(context.Background(), &State{
		OrganizationID: 1,
		FeatureID:      "core",
		Initialized:    true,
		Enabled:        true,
	})
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStateStore_SetEnabled(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE organization_features").
		WithArgs(int64(1), "availability", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SetEnabled(context.Background(), 1, "availability", false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStateStore_SetEnabled_MissingRecord(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE organization_features").
		WithArgs(int64(1), "availability", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetEnabled(context.Background(), 1, "availability", true)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStateStore_ListByOrganization(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT organization_id, feature_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(stateColumns()).
			AddRow(int64(1), "availability", true, true, now, now).
			AddRow(int64(1), "core", true, true, now, now))

	states, err := store.ListByOrganization(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "availability", states[0].FeatureID)
	assert.Equal(t, "core", states[1].FeatureID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
