package features

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewplane/crewd/pkg/orgs"
)

var (
	// ErrInvalidModule marks a malformed module at registration time
	ErrInvalidModule = errors.New("invalid feature module")

	// ErrModuleNotFound marks an operation on an unregistered feature id
	ErrModuleNotFound = errors.New("feature module not found")

	// ErrNotConfigurable marks an enable/disable attempt on a module whose
	// enabled state is fixed
	ErrNotConfigurable = errors.New("feature module is not user-configurable")

	// ErrNotInitialized marks a toggle on a feature that has not been
	// initialized for the organization
	ErrNotInitialized = errors.New("feature not initialized for organization")
)

// InitializeHook runs once when a feature is first initialized for an
// organization, typically to write default settings. It may perform I/O.
type InitializeHook func(ctx context.Context, organizationID int64) error

// EnableHook runs when a feature transitions to enabled
type EnableHook func(ctx context.Context, organizationID int64) error

// DisableHook runs when a feature transitions to disabled
type DisableHook func(ctx context.Context, organizationID int64) error

// Module is a self-contained capability unit. The hook fields are optional;
// a nil hook is simply skipped.
type Module struct {
	ID               string
	Name             string
	Description      string
	AvailableTiers   []orgs.Tier
	UserConfigurable bool

	Initialize InitializeHook
	OnEnable   EnableHook
	OnDisable  DisableHook
}

// Validate checks the module declaration. Registering a malformed module is
// a programmer error surfaced synchronously.
func (m *Module) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil module", ErrInvalidModule)
	}
	if m.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidModule)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: name is required for %q", ErrInvalidModule, m.ID)
	}
	if len(m.AvailableTiers) == 0 {
		return fmt.Errorf("%w: %q declares no available tiers", ErrInvalidModule, m.ID)
	}
	for _, tier := range m.AvailableTiers {
		if !tier.Valid() {
			return fmt.Errorf("%w: %q declares unknown tier %q", ErrInvalidModule, m.ID, tier)
		}
	}
	return nil
}

// AvailableForTier reports whether the module is available at the tier
func (m *Module) AvailableForTier(tier orgs.Tier) bool {
	for _, t := range m.AvailableTiers {
		if t == tier {
			return true
		}
	}
	return false
}
