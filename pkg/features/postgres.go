package features

import (
	"context"
	"database/sql"
	"fmt"

	// registers the postgres driver used by the state store
	_ "github.com/lib/pq"
)

// PostgresStateStore persists organization feature state in PostgreSQL.
// The ON CONFLICT DO NOTHING insert makes CreateIfAbsent atomic across
// process instances, which is what closes the double-initialization race in
// multi-instance deployments.
type PostgresStateStore struct {
	db *sql.DB
}

// NewPostgresStateStore creates a store on an existing connection pool
func NewPostgresStateStore(db *sql.DB) *PostgresStateStore {
	return &PostgresStateStore{db: db}
}

const stateSchema = `
CREATE TABLE IF NOT EXISTS organization_features (
	organization_id BIGINT NOT NULL,
	feature_id      TEXT NOT NULL,
	initialized     BOOLEAN NOT NULL DEFAULT TRUE,
	enabled         BOOLEAN NOT NULL DEFAULT TRUE,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (organization_id, feature_id)
)`

// EnsureSchema creates the backing table if it does not exist
func (s *PostgresStateStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, stateSchema); err != nil {
		return fmt.Errorf("failed to create organization_features table: %w", err)
	}
	return nil
}

// Get returns the state for the pair, or (nil, nil) if none exists
func (s *PostgresStateStore) Get(ctx context.Context, organizationID int64, featureID string) (*State, error) {
	query := `
		SELECT organization_id, feature_id, initialized, enabled, created_at, updated_at
		FROM organization_features
		WHERE organization_id = $1 AND feature_id = $2
	`

	var state State
	err := s.db.QueryRowContext(ctx, query, organizationID, featureID).Scan(
		&state.OrganizationID,
		&state.FeatureID,
		&state.Initialized,
		&state.Enabled,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature state: %w", err)
	}

	return &state, nil
}

// CreateIfAbsent inserts the state; the conflict target is the primary key,
// so exactly one concurrent caller observes created=true.
func (s *PostgresStateStore) CreateIfAbsent(ctx context.Context, state *State) (bool, error) {
	query := `
		INSERT INTO organization_features (organization_id, feature_id, initialized, enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id, feature_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		state.OrganizationID,
		state.FeatureID,
		state.Initialized,
		state.Enabled,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create feature state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return rows == 1, nil
}

// SetEnabled flips the enabled flag for an existing record
func (s *PostgresStateStore) SetEnabled(ctx context.Context, organizationID int64, featureID string, enabled bool) error {
	query := `
		UPDATE organization_features
		SET enabled = $3, updated_at = NOW()
		WHERE organization_id = $1 AND feature_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, organizationID, featureID, enabled)
	if err != nil {
		return fmt.Errorf("failed to update feature state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return ErrNotInitialized
	}

	return nil
}

// ListByOrganization returns all states for an organization
func (s *PostgresStateStore) ListByOrganization(ctx context.Context, organizationID int64) ([]*State, error) {
	query := `
		SELECT organization_id, feature_id, initialized, enabled, created_at, updated_at
		FROM organization_features
		WHERE organization_id = $1
		ORDER BY feature_id
	`

	rows, err := s.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature states: %w", err)
	}
	defer rows.Close()

	var states []*State
	for rows.Next() {
		var state State
		if err := rows.Scan(
			&state.OrganizationID,
			&state.FeatureID,
			&state.Initialized,
			&state.Enabled,
			&state.CreatedAt,
			&state.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feature state: %w", err)
		}
		states = append(states, &state)
	}

	return states, rows.Err()
}
