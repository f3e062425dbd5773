package rbac

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Matrix maps Role -> Resource -> allowed permissions. It is assembled once
// at process startup and treated as read-only configuration afterwards.
// Entries are fully explicit per role: a higher-ranked role does not inherit
// a lower role's permissions. super_admin has no entry because the evaluator
// bypasses the matrix for it.
type Matrix map[Role]map[Resource][]Permission

// Allows reports whether the matrix explicitly grants the permission.
// A missing role or resource key means deny; there is no default-allow.
func (m Matrix) Allows(role Role, resource Resource, permission Permission) bool {
	resources, ok := m[role]
	if !ok {
		return false
	}
	allowed, ok := resources[resource]
	if !ok {
		return false
	}
	for _, p := range allowed {
		if p == permission {
			return true
		}
	}
	return false
}

// DefaultMatrix returns the built-in permission matrix for the workforce
// platform roles.
func DefaultMatrix() Matrix {
	return Matrix{
		RoleInternalAdmin: {
			ResourceUsers:         {PermissionView, PermissionCreate, PermissionUpdate, PermissionDelete, PermissionManage},
			ResourceOrganizations: {PermissionView, PermissionCreate, PermissionUpdate, PermissionManage},
			ResourceLocations:     {PermissionView, PermissionCreate, PermissionUpdate, PermissionDelete},
			ResourceBookings:      {PermissionView, PermissionCreate, PermissionUpdate, PermissionDelete, PermissionApprove, PermissionAssign},
			ResourceShifts:        {PermissionView, PermissionCreate, PermissionUpdate, PermissionDelete, PermissionAssign},
			ResourceAvailability:  {PermissionView},
			ResourceReports:       {PermissionView, PermissionExport},
			ResourceFeatures:      {PermissionView, PermissionManage},
			ResourceAudit:         {PermissionView},
		},
		RoleInternalFieldManager: {
			ResourceUsers:        {PermissionView},
			ResourceLocations:    {PermissionView, PermissionUpdate},
			ResourceBookings:     {PermissionView, PermissionUpdate, PermissionApprove, PermissionAssign},
			ResourceShifts:       {PermissionView, PermissionCreate, PermissionUpdate, PermissionAssign},
			ResourceAvailability: {PermissionView},
			ResourceReports:      {PermissionView, PermissionExport},
		},
		RoleFieldCoordinator: {
			ResourceLocations:    {PermissionView},
			ResourceBookings:     {PermissionView, PermissionUpdate, PermissionAssign},
			ResourceShifts:       {PermissionView, PermissionUpdate},
			ResourceAvailability: {PermissionView, PermissionUpdate},
			ResourceReports:      {PermissionView},
		},
		RoleBrandAgent: {
			ResourceBookings:     {PermissionView},
			ResourceShifts:       {PermissionView},
			ResourceAvailability: {PermissionView, PermissionCreate, PermissionUpdate},
		},
		RoleClientManager: {
			ResourceUsers:     {PermissionView},
			ResourceLocations: {PermissionView, PermissionCreate, PermissionUpdate},
			ResourceBookings:  {PermissionView, PermissionCreate, PermissionUpdate},
			ResourceReports:   {PermissionView, PermissionExport},
			ResourceFeatures:  {PermissionView},
		},
		RoleClientUser: {
			ResourceLocations: {PermissionView},
			ResourceBookings:  {PermissionView},
			ResourceReports:   {PermissionView},
		},
	}
}

// LoadMatrixFile loads a matrix override from a YAML file of the form:
//
//	client_user:
//	  bookings: [view, create]
//
// Role, resource, and permission names must belong to the closed
// enumerations; anything else is a configuration error.
func LoadMatrixFile(path string) (Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix file: %w", err)
	}

	var raw map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse matrix file: %w", err)
	}

	matrix := make(Matrix, len(raw))
	for roleName, resources := range raw {
		role := Role(roleName)
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q in matrix file", roleName)
		}
		if role == RoleSuperAdmin {
			return nil, fmt.Errorf("super_admin permissions are implicit and cannot be configured")
		}
		matrix[role] = make(map[Resource][]Permission, len(resources))
		for resourceName, permissions := range resources {
			resource := Resource(resourceName)
			if !resource.Valid() {
				return nil, fmt.Errorf("unknown resource %q for role %q", resourceName, roleName)
			}
			perms := make([]Permission, 0, len(permissions))
			for _, permissionName := range permissions {
				permission := Permission(permissionName)
				if !permission.Valid() {
					return nil, fmt.Errorf("unknown permission %q on %q for role %q", permissionName, resourceName, roleName)
				}
				perms = append(perms, permission)
			}
			matrix[role][resource] = perms
		}
	}

	return matrix, nil
}

// Merge overlays override entries on top of base. Overrides replace the
// entire resource entry for a role rather than appending, so a deployment
// can tighten as well as widen a grant.
func Merge(base, override Matrix) Matrix {
	merged := make(Matrix, len(base))
	for role, resources := range base {
		merged[role] = make(map[Resource][]Permission, len(resources))
		for resource, perms := range resources {
			merged[role][resource] = append([]Permission(nil), perms...)
		}
	}
	for role, resources := range override {
		if _, ok := merged[role]; !ok {
			merged[role] = make(map[Resource][]Permission, len(resources))
		}
		for resource, perms := range resources {
			merged[role][resource] = append([]Permission(nil), perms...)
		}
	}
	return merged
}
