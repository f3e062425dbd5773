package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewplane/crewd/pkg/orgs"
	"github.com/crewplane/crewd/pkg/rbac"
)

func newOrgRouter(directory orgs.Directory, handler http.HandlerFunc) *mux.Router {
	router := mux.NewRouter()
	sub := router.PathPrefix("/orgs/{org_id}").Subrouter()
	sub.Use(OrgContext(directory))
	sub.HandleFunc("/ping", handler).Methods(http.MethodGet)
	return router
}

func TestOrgContext_ResolvesOrganizationAndUser(t *testing.T) {
	directory := orgs.NewMemoryDirectory()
	directory.Put(&orgs.Organization{ID: 7, Name: "Acme", Tier: orgs.Tier2, Status: orgs.StatusActive})

	var gotUser *rbac.User
	var gotOrg *orgs.Organization
	var gotCtx *orgs.Context
	router := newOrgRouter(directory, func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUser(r)
		gotOrg = GetOrganization(r)
		gotCtx = GetOrgContext(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/orgs/7/ping", nil)
	req.Header.Set(HeaderUserID, "42")
	req.Header.Set(HeaderUserRole, string(rbac.RoleClientManager))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, int64(42), gotUser.ID)
	assert.Equal(t, rbac.RoleClientManager, gotUser.Role)
	require.NotNil(t, gotOrg)
	assert.Equal(t, "Acme", gotOrg.Name)
	require.NotNil(t, gotCtx)
	assert.Equal(t, int64(7), gotCtx.OrganizationID)
	assert.Equal(t, orgs.Tier2, gotCtx.Tier)
	assert.Equal(t, rbac.RoleClientManager, gotCtx.UserRole)
}

func TestOrgContext_InvalidOrgID(t *testing.T) {
	directory := orgs.NewMemoryDirectory()
	router := newOrgRouter(directory, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/orgs/abc/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrgContext_UnknownOrganization(t *testing.T) {
	directory := orgs.NewMemoryDirectory()
	router := newOrgRouter(directory, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/orgs/99/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrgContext_MisconfiguredTier(t *testing.T) {
	directory := orgs.NewMemoryDirectory()
	directory.Put(&orgs.Organization{ID: 7, Tier: orgs.Tier("gold"), Status: orgs.StatusActive})
	router := newOrgRouter(directory, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/orgs/7/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOrgContext_NoIdentityHeaders(t *testing.T) {
	directory := orgs.NewMemoryDirectory()
	directory.Put(&orgs.Organization{ID: 7, Tier: orgs.Tier1, Status: orgs.StatusActive})

	var gotUser *rbac.User
	router := newOrgRouter(directory, func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUser(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/orgs/7/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, gotUser)
}
