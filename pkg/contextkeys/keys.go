// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined
// here. This prevents typos, documents dependencies, and makes key usage
// discoverable.
package contextkeys

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains *rbac.User
	// Set by: middleware.OrgContext (pkg/middleware/org.go)
	// Required by: permission middleware, audit
	// Type: *rbac.User
	UserKey Key = "user"

	// OrgContextKey contains *orgs.Context
	// Set by: middleware.OrgContext (pkg/middleware/org.go)
	// Required by: feature handlers, permission middleware
	// Type: *orgs.Context
	OrgContextKey Key = "org_context"

	// OrganizationKey contains *orgs.Organization
	// Set by: middleware.OrgContext (pkg/middleware/org.go)
	// Required by: feature handlers
	// Type: *orgs.Organization
	OrganizationKey Key = "organization"
)

// The request ID key lives in pkg/observability next to the logger that
// consumes it; middleware.RequestID sets it.
