package rbac

// Role represents a named privilege level assigned to a user
type Role string

const (
	RoleSuperAdmin           Role = "super_admin"
	RoleInternalAdmin        Role = "internal_admin"
	RoleInternalFieldManager Role = "internal_field_manager"
	RoleFieldCoordinator     Role = "field_coordinator"
	RoleBrandAgent           Role = "brand_agent"
	RoleClientManager        Role = "client_manager"
	RoleClientUser           Role = "client_user"
)

// roleLevels defines the fixed hierarchy (higher = more privileged).
// field_coordinator and brand_agent share a level.
var roleLevels = map[Role]int{
	RoleSuperAdmin:           100,
	RoleInternalAdmin:        80,
	RoleInternalFieldManager: 60,
	RoleFieldCoordinator:     40,
	RoleBrandAgent:           40,
	RoleClientManager:        30,
	RoleClientUser:           20,
}

// Level returns the numeric hierarchy level for the role.
// Unknown roles map to 0 and therefore never satisfy a role floor.
func (r Role) Level() int {
	return roleLevels[r]
}

// Valid reports whether the role is part of the fixed role set
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// AllRoles returns the fixed role set ordered by descending privilege
func AllRoles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleInternalAdmin,
		RoleInternalFieldManager,
		RoleFieldCoordinator,
		RoleBrandAgent,
		RoleClientManager,
		RoleClientUser,
	}
}

// Resource represents a domain noun subject to access control
type Resource string

const (
	ResourceUsers         Resource = "users"
	ResourceOrganizations Resource = "organizations"
	ResourceLocations     Resource = "locations"
	ResourceBookings      Resource = "bookings"
	ResourceShifts        Resource = "shifts"
	ResourceAvailability  Resource = "availability"
	ResourceReports       Resource = "reports"
	ResourceFeatures      Resource = "features"
	ResourceAudit         Resource = "audit"
)

// Valid reports whether the resource is part of the closed enumeration
func (r Resource) Valid() bool {
	switch r {
	case ResourceUsers, ResourceOrganizations, ResourceLocations,
		ResourceBookings, ResourceShifts, ResourceAvailability,
		ResourceReports, ResourceFeatures, ResourceAudit:
		return true
	}
	return false
}

// Permission represents a named action on a resource
type Permission string

const (
	PermissionView    Permission = "view"
	PermissionCreate  Permission = "create"
	PermissionUpdate  Permission = "update"
	PermissionDelete  Permission = "delete"
	PermissionApprove Permission = "approve"
	PermissionAssign  Permission = "assign"
	PermissionExport  Permission = "export"
	PermissionManage  Permission = "manage"
)

// Valid reports whether the permission is part of the closed enumeration
func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionCreate, PermissionUpdate, PermissionDelete,
		PermissionApprove, PermissionAssign, PermissionExport, PermissionManage:
		return true
	}
	return false
}

// User is the identity slice this core reads. It is produced by the
// authentication collaborator; extended profile fields never reach here.
type User struct {
	ID             int64 `json:"id"`
	Role           Role  `json:"role"`
	OrganizationID int64 `json:"organization_id"`
}
