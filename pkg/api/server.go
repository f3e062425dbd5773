// Package api exposes the thin admin HTTP surface over the authorization
// and feature-gating core: feature listings, per-organization toggles, tier
// changes, and audit queries. Route handlers only translate between HTTP
// and the core; every decision is made by the checker and the registry.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/crewplane/crewd/pkg/audit"
	"github.com/crewplane/crewd/pkg/events"
	"github.com/crewplane/crewd/pkg/features"
	"github.com/crewplane/crewd/pkg/middleware"
	"github.com/crewplane/crewd/pkg/observability"
	"github.com/crewplane/crewd/pkg/orgs"
	"github.com/crewplane/crewd/pkg/rbac"
)

// Server wires the admin routes
type Server struct {
	router    *mux.Router
	registry  *features.Registry
	checker   *rbac.Checker
	directory orgs.Directory
	bus       events.Bus
	audit     *audit.Store
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewServer creates the admin server and registers its routes
func NewServer(
	registry *features.Registry,
	checker *rbac.Checker,
	directory orgs.Directory,
	bus events.Bus,
	auditStore *audit.Store,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		registry:  registry,
		checker:   checker,
		directory: directory,
		bus:       bus,
		audit:     auditStore,
		logger:    logger,
		metrics:   metrics,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.RequestID)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	orgRouter := s.router.PathPrefix("/api/v1/orgs/{org_id}").Subrouter()
	orgRouter.Use(middleware.OrgContext(s.directory))

	viewFeatures := middleware.RequirePermission(s.checker, s.bus, rbac.ResourceFeatures, rbac.PermissionView)
	manageFeatures := middleware.RequirePermission(s.checker, s.bus, rbac.ResourceFeatures, rbac.PermissionManage)
	manageOrgs := middleware.RequirePermission(s.checker, s.bus, rbac.ResourceOrganizations, rbac.PermissionManage)
	viewAudit := middleware.RequirePermission(s.checker, s.bus, rbac.ResourceAudit, rbac.PermissionView)

	orgRouter.Handle("/features", viewFeatures(http.HandlerFunc(s.handleListFeatures))).Methods("GET")
	orgRouter.Handle("/features/{feature_id}/enable", manageFeatures(http.HandlerFunc(s.handleEnableFeature))).Methods("POST")
	orgRouter.Handle("/features/{feature_id}/disable", manageFeatures(http.HandlerFunc(s.handleDisableFeature))).Methods("POST")
	orgRouter.Handle("/tier", manageOrgs(http.HandlerFunc(s.handleSetTier))).Methods("PUT")
	orgRouter.Handle("/audit", viewAudit(http.HandlerFunc(s.handleAudit))).Methods("GET")
}

// Router returns the HTTP handler for the server
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
