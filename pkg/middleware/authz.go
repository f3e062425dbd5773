package middleware

import (
	"net/http"

	"github.com/crewplane/crewd/pkg/events"
	"github.com/crewplane/crewd/pkg/rbac"
)

// RequirePermission returns middleware enforcing a matrix check on the
// route. A missing user maps to 401, a denial to a generic 403; the denial
// is additionally published on the bus for audit.
func RequirePermission(checker *rbac.Checker, bus events.Bus, resource rbac.Resource, permission rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if !checker.HasPermission(user, resource, permission) {
				publishDenied(r, bus, user, map[string]any{
					"resource":   string(resource),
					"permission": string(permission),
				})
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware enforcing a role floor on the route. Use
// this only where a binary hierarchy check is genuinely sufficient; most
// routes want RequirePermission.
func RequireRole(checker *rbac.Checker, bus events.Bus, required rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if !checker.HasRequiredRole(user, required) {
				publishDenied(r, bus, user, map[string]any{
					"required_role": string(required),
				})
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func publishDenied(r *http.Request, bus events.Bus, user *rbac.User, data map[string]any) {
	if bus == nil {
		return
	}
	data["user_id"] = user.ID
	data["role"] = string(user.Role)
	data["path"] = r.URL.Path
	if orgCtx := GetOrgContext(r); orgCtx != nil {
		data["organization_id"] = orgCtx.OrganizationID
	}
	bus.Publish(r.Context(), events.EventPermissionDenied, data)
}
