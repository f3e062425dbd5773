package orgs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Directory is the read surface this core needs from the external
// organization store, plus the one mutation an administrator performs
// through it (tier changes).
type Directory interface {
	GetOrganization(ctx context.Context, id int64) (*Organization, error)
	ListActive(ctx context.Context) ([]*Organization, error)
	SetTier(ctx context.Context, id int64, tier Tier) (*Organization, error)
}

// MemoryDirectory is a mutex-guarded in-memory Directory for single-instance
// deployments and tests.
type MemoryDirectory struct {
	mu   sync.RWMutex
	orgs map[int64]*Organization
}

// NewMemoryDirectory creates an empty directory
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		orgs: make(map[int64]*Organization),
	}
}

// Put adds or replaces an organization record
func (d *MemoryDirectory) Put(org *Organization) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := *org
	d.orgs[org.ID] = &cp
}

// GetOrganization returns the organization or ErrOrganizationNotFound
func (d *MemoryDirectory) GetOrganization(_ context.Context, id int64) (*Organization, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	org, ok := d.orgs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrOrganizationNotFound, id)
	}
	cp := *org
	return &cp, nil
}

// ListActive returns all active organizations ordered by ID
func (d *MemoryDirectory) ListActive(_ context.Context) ([]*Organization, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	active := make([]*Organization, 0, len(d.orgs))
	for _, org := range d.orgs {
		if org.Active() {
			cp := *org
			active = append(active, &cp)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

// SetTier updates an organization's tier and returns the updated record
func (d *MemoryDirectory) SetTier(_ context.Context, id int64, tier Tier) (*Organization, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	org, ok := d.orgs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrOrganizationNotFound, id)
	}
	org.Tier = tier
	org.UpdatedAt = time.Now().UTC()
	cp := *org
	return &cp, nil
}
