package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/crewplane/crewd/pkg/contextkeys"
	"github.com/crewplane/crewd/pkg/orgs"
	"github.com/crewplane/crewd/pkg/rbac"
)

// Identity headers set by the upstream session collaborator after it has
// verified the caller.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// OrgContext resolves the organization from the org_id route variable,
// reads the authenticated identity headers, and stores the organization,
// the user, and the combined orgs.Context on the request context.
func OrgContext(directory orgs.Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			orgIDStr, ok := vars["org_id"]
			if !ok {
				// Route carries no organization scope
				next.ServeHTTP(w, r.WithContext(withUser(r.Context(), userFromRequest(r))))
				return
			}

			orgID, err := strconv.ParseInt(orgIDStr, 10, 64)
			if err != nil {
				http.Error(w, "Invalid organization ID", http.StatusBadRequest)
				return
			}

			org, err := directory.GetOrganization(r.Context(), orgID)
			if err != nil {
				http.Error(w, "Organization not found", http.StatusNotFound)
				return
			}

			user := userFromRequest(r)
			orgCtx, err := orgs.NewContext(org, user)
			if err != nil {
				http.Error(w, "Organization tier is not configured", http.StatusInternalServerError)
				return
			}

			ctx := withUser(r.Context(), user)
			ctx = context.WithValue(ctx, contextkeys.OrganizationKey, org)
			ctx = context.WithValue(ctx, contextkeys.OrgContextKey, orgCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFromRequest builds the identity slice from the trusted headers.
// Returns nil when no identity is present, which downstream checks treat as
// a denial.
func userFromRequest(r *http.Request) *rbac.User {
	idStr := r.Header.Get(HeaderUserID)
	if idStr == "" {
		return nil
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil
	}
	return &rbac.User{
		ID:   id,
		Role: rbac.Role(r.Header.Get(HeaderUserRole)),
	}
}

func withUser(ctx context.Context, user *rbac.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, contextkeys.UserKey, user)
}

// GetUser returns the authenticated user from the request, or nil
func GetUser(r *http.Request) *rbac.User {
	user, _ := r.Context().Value(contextkeys.UserKey).(*rbac.User)
	return user
}

// GetOrganization returns the resolved organization from the request, or nil
func GetOrganization(r *http.Request) *orgs.Organization {
	org, _ := r.Context().Value(contextkeys.OrganizationKey).(*orgs.Organization)
	return org
}

// GetOrgContext returns the request-scoped organization context, or nil
func GetOrgContext(r *http.Request) *orgs.Context {
	orgCtx, _ := r.Context().Value(contextkeys.OrgContextKey).(*orgs.Context)
	return orgCtx
}
