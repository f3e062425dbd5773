package orgs

import (
	"errors"
	"fmt"
	"time"

	"github.com/crewplane/crewd/pkg/rbac"
)

// Tier represents an organization's subscription tier
type Tier string

const (
	// Tier1 is staff leasing: the platform operates the workforce
	Tier1 Tier = "tier1"
	// Tier2 is event-request coordination
	Tier2 Tier = "tier2"
	// Tier3 is white-label full self-service
	Tier3 Tier = "tier3"
)

// Valid reports whether the tier is one of the defined tiers
func (t Tier) Valid() bool {
	switch t {
	case Tier1, Tier2, Tier3:
		return true
	}
	return false
}

// AllTiers returns the defined tiers in ascending order
func AllTiers() []Tier {
	return []Tier{Tier1, Tier2, Tier3}
}

// ParseTier parses a tier name
func ParseTier(s string) (Tier, error) {
	tier := Tier(s)
	if !tier.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return tier, nil
}

// Status represents organization lifecycle status
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Organization represents an organization record as read from the external
// store. Only the fields this core consumes are modeled.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Tier      Tier      `json:"tier"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the organization is active
func (o *Organization) Active() bool {
	return o != nil && o.Status == StatusActive
}

var (
	ErrUnknownTier          = errors.New("unknown organization tier")
	ErrOrganizationNotFound = errors.New("organization not found")
)

// ResolveTier derives the tier from an organization record. Pure lookup, no
// side effects.
func ResolveTier(org *Organization) (Tier, error) {
	if org == nil {
		return "", ErrOrganizationNotFound
	}
	if !org.Tier.Valid() {
		return "", fmt.Errorf("%w: %q on organization %d", ErrUnknownTier, org.Tier, org.ID)
	}
	return org.Tier, nil
}

// Context is the transient, request-scoped organization context combining
// the organization, its tier, and the requesting user's role. It is built
// once per inbound request and handed around as plain data.
type Context struct {
	OrganizationID int64     `json:"organization_id"`
	Tier           Tier      `json:"tier"`
	UserRole       rbac.Role `json:"user_role"`
}

// NewContext builds a request context from an organization record and the
// authenticated user.
func NewContext(org *Organization, user *rbac.User) (*Context, error) {
	tier, err := ResolveTier(org)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		OrganizationID: org.ID,
		Tier:           tier,
	}
	if user != nil {
		ctx.UserRole = user.Role
	}
	return ctx, nil
}
