package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_HasPermission_SuperAdminBypass(t *testing.T) {
	// Empty matrix: only super_admin should ever pass.
	checker := NewChecker(Matrix{})
	admin := &User{ID: 1, Role: RoleSuperAdmin, OrganizationID: 1}

	for _, resource := range []Resource{ResourceUsers, ResourceBookings, ResourceFeatures, ResourceAudit} {
		for _, permission := range []Permission{PermissionView, PermissionDelete, PermissionManage} {
			assert.True(t, checker.HasPermission(admin, resource, permission),
				"super_admin denied %s on %s", permission, resource)
		}
	}
}

func TestChecker_HasPermission_NilUserDenied(t *testing.T) {
	checker := NewChecker(DefaultMatrix())
	assert.False(t, checker.HasPermission(nil, ResourceBookings, PermissionView))
}

func TestChecker_HasPermission_MatrixLookup(t *testing.T) {
	checker := NewChecker(DefaultMatrix())
	user := &User{ID: 42, Role: RoleClientUser, OrganizationID: 7}

	assert.True(t, checker.HasPermission(user, ResourceBookings, PermissionView))
	assert.False(t, checker.HasPermission(user, ResourceBookings, PermissionCreate))
	assert.False(t, checker.HasPermission(user, ResourceUsers, PermissionView))
}

func TestChecker_HasPermission_UnknownRoleDenied(t *testing.T) {
	checker := NewChecker(DefaultMatrix())
	user := &User{ID: 9, Role: Role("contractor"), OrganizationID: 7}

	assert.False(t, checker.HasPermission(user, ResourceBookings, PermissionView))
}

func TestChecker_HasPermission_CacheDisabled(t *testing.T) {
	checker := NewChecker(DefaultMatrix(), WithCacheSize(0))
	user := &User{ID: 3, Role: RoleFieldCoordinator, OrganizationID: 2}

	// Same decision with and without a cache
	assert.True(t, checker.HasPermission(user, ResourceAvailability, PermissionUpdate))
	assert.True(t, checker.HasPermission(user, ResourceAvailability, PermissionUpdate))
	assert.False(t, checker.HasPermission(user, ResourceUsers, PermissionView))
}

func TestChecker_HasRequiredRole(t *testing.T) {
	checker := NewChecker(DefaultMatrix())

	tests := []struct {
		name     string
		user     *User
		required Role
		want     bool
	}{
		{"same role passes", &User{Role: RoleClientManager}, RoleClientManager, true},
		{"higher role passes", &User{Role: RoleInternalAdmin}, RoleClientManager, true},
		{"lower role fails", &User{Role: RoleClientUser}, RoleClientManager, false},
		{"coordinator meets agent floor", &User{Role: RoleFieldCoordinator}, RoleBrandAgent, true},
		{"agent meets coordinator floor", &User{Role: RoleBrandAgent}, RoleFieldCoordinator, true},
		{"super_admin passes everything", &User{Role: RoleSuperAdmin}, RoleInternalAdmin, true},
		{"nil user fails", nil, RoleClientUser, false},
		{"unknown required role fails", &User{Role: RoleSuperAdmin}, Role("contractor"), false},
		{"unknown user role fails", &User{Role: Role("contractor")}, RoleClientUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.HasRequiredRole(tt.user, tt.required))
		})
	}
}

func TestChecker_ChecksAreIndependent(t *testing.T) {
	// A role can clear the hierarchy floor while still lacking a matrix
	// grant, and vice versa.
	checker := NewChecker(DefaultMatrix())
	manager := &User{ID: 5, Role: RoleInternalFieldManager, OrganizationID: 1}

	assert.True(t, checker.HasRequiredRole(manager, RoleFieldCoordinator))
	assert.False(t, checker.HasPermission(manager, ResourceAvailability, PermissionUpdate))

	agent := &User{ID: 6, Role: RoleBrandAgent, OrganizationID: 1}
	assert.False(t, checker.HasRequiredRole(agent, RoleInternalFieldManager))
	assert.True(t, checker.HasPermission(agent, ResourceAvailability, PermissionCreate))
}
