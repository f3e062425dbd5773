package features

import (
	"context"
	"sync"
	"time"
)

// State is the per-organization record for one feature. Created the first
// time the feature is initialized; never deleted, only flipped between
// enabled and disabled.
type State struct {
	OrganizationID int64     `json:"organization_id"`
	FeatureID      string    `json:"feature_id"`
	Initialized    bool      `json:"initialized"`
	Enabled        bool      `json:"enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StateStore persists organization feature state. Implementations must make
// CreateIfAbsent atomic: concurrent callers for the same pair observe
// exactly one creation.
type StateStore interface {
	// Get returns the state for the pair, or (nil, nil) if none exists
	Get(ctx context.Context, organizationID int64, featureID string) (*State, error)

	// CreateIfAbsent inserts the state if no record exists for its
	// (organization, feature) pair. Returns true when this call created the
	// record.
	CreateIfAbsent(ctx context.Context, state *State) (bool, error)

	// SetEnabled flips the enabled flag for an existing record
	SetEnabled(ctx context.Context, organizationID int64, featureID string, enabled bool) error

	// ListByOrganization returns all states for an organization
	ListByOrganization(ctx context.Context, organizationID int64) ([]*State, error)
}

type stateKey struct {
	organizationID int64
	featureID      string
}

// MemoryStateStore is the in-memory StateStore for single-instance
// deployments and tests.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[stateKey]*State
}

// NewMemoryStateStore creates an empty store
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		states: make(map[stateKey]*State),
	}
}

// Get returns a copy of the state, or (nil, nil) if absent
func (s *MemoryStateStore) Get(_ context.Context, organizationID int64, featureID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[stateKey{organizationID, featureID}]
	if !ok {
		return nil, nil
	}
	cp := *state
	return &cp, nil
}

// CreateIfAbsent inserts under the store lock, making the check-and-set
// atomic against concurrent initializers.
func (s *MemoryStateStore) CreateIfAbsent(_ context.Context, state *State) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stateKey{state.OrganizationID, state.FeatureID}
	if _, ok := s.states[key]; ok {
		return false, nil
	}
	cp := *state
	now := time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.states[key] = &cp
	return true, nil
}

// SetEnabled flips the enabled flag; missing records are ErrNotInitialized
func (s *MemoryStateStore) SetEnabled(_ context.Context, organizationID int64, featureID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[stateKey{organizationID, featureID}]
	if !ok {
		return ErrNotInitialized
	}
	state.Enabled = enabled
	state.UpdatedAt = time.Now().UTC()
	return nil
}

// ListByOrganization returns copies of all states for the organization
func (s *MemoryStateStore) ListByOrganization(_ context.Context, organizationID int64) ([]*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*State
	for key, state := range s.states {
		if key.organizationID == organizationID {
			cp := *state
			out = append(out, &cp)
		}
	}
	return out, nil
}
