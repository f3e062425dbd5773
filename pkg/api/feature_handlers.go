package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/crewplane/crewd/pkg/audit"
	"github.com/crewplane/crewd/pkg/events"
	"github.com/crewplane/crewd/pkg/features"
	"github.com/crewplane/crewd/pkg/middleware"
	"github.com/crewplane/crewd/pkg/orgs"
)

// featureResponse is one feature in an organization's listing
type featureResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	UserConfigurable bool   `json:"user_configurable"`
	Initialized      bool   `json:"initialized"`
	Enabled          bool   `json:"enabled"`
}

// handleListFeatures lists the modules available at the organization's tier
// together with their per-organization state.
func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	org := middleware.GetOrganization(r)
	if org == nil {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}

	states, err := s.registry.FeatureStates(r.Context(), org.ID)
	if err != nil {
		s.logger.WithError(err).WithField("organization_id", org.ID).Error("failed to load feature states")
		writeError(w, http.StatusInternalServerError, "failed to load feature states")
		return
	}
	byFeature := make(map[string]*features.State, len(states))
	for _, state := range states {
		byFeature[state.FeatureID] = state
	}

	modules := s.registry.ModulesForTier(org.Tier)
	out := make([]featureResponse, 0, len(modules))
	for _, module := range modules {
		resp := featureResponse{
			ID:               module.ID,
			Name:             module.Name,
			Description:      module.Description,
			UserConfigurable: module.UserConfigurable,
		}
		if state := byFeature[module.ID]; state != nil {
			resp.Initialized = state.Initialized
			resp.Enabled = state.Enabled
		}
		out = append(out, resp)
	}

	writeJSON(w, http.StatusOK, map[string]any{"features": out})
}

func (s *Server) handleEnableFeature(w http.ResponseWriter, r *http.Request) {
	s.handleToggleFeature(w, r, true)
}

func (s *Server) handleDisableFeature(w http.ResponseWriter, r *http.Request) {
	s.handleToggleFeature(w, r, false)
}

func (s *Server) handleToggleFeature(w http.ResponseWriter, r *http.Request, enable bool) {
	org := middleware.GetOrganization(r)
	if org == nil {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}
	featureID := mux.Vars(r)["feature_id"]

	var err error
	if enable {
		err = s.registry.EnableFeature(r.Context(), org.ID, featureID)
	} else {
		err = s.registry.DisableFeature(r.Context(), org.ID, featureID)
	}

	switch {
	case err == nil:
	case errors.Is(err, features.ErrModuleNotFound):
		writeError(w, http.StatusNotFound, "unknown feature")
		return
	case errors.Is(err, features.ErrNotConfigurable):
		writeError(w, http.StatusConflict, "feature is not user-configurable")
		return
	case errors.Is(err, features.ErrNotInitialized):
		writeError(w, http.StatusConflict, "feature is not initialized for this organization")
		return
	default:
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"organization_id": org.ID,
			"feature":         featureID,
		}).Error("feature toggle failed")
		writeError(w, http.StatusInternalServerError, "feature toggle failed")
		return
	}

	state, err := s.registry.FeatureStates(r.Context(), org.ID)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"feature_id": featureID, "enabled": enable})
		return
	}
	for _, st := range state {
		if st.FeatureID == featureID {
			writeJSON(w, http.StatusOK, st)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"feature_id": featureID, "enabled": enable})
}

// setTierRequest is the tier change payload
type setTierRequest struct {
	Tier string `json:"tier"`
}

// handleSetTier changes the organization's tier and re-runs the feature
// initialization sweep so newly available modules come online immediately.
func (s *Server) handleSetTier(w http.ResponseWriter, r *http.Request) {
	org := middleware.GetOrganization(r)
	if org == nil {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}

	var req setTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tier, err := orgs.ParseTier(req.Tier)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown tier")
		return
	}

	previous := org.Tier
	updated, err := s.directory.SetTier(r.Context(), org.ID, tier)
	if err != nil {
		s.logger.WithError(err).WithField("organization_id", org.ID).Error("tier change failed")
		writeError(w, http.StatusInternalServerError, "tier change failed")
		return
	}

	s.bus.Publish(r.Context(), events.EventOrgTierChanged, map[string]any{
		"organization_id": updated.ID,
		"previous_tier":   string(previous),
		"tier":            string(tier),
	})

	if err := s.registry.InitializeOrganizationFeatures(r.Context(), updated); err != nil {
		s.logger.WithError(err).WithField("organization_id", updated.ID).Error("feature initialization after tier change failed")
	}

	writeJSON(w, http.StatusOK, updated)
}

// handleAudit returns recent audit records for the organization
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	org := middleware.GetOrganization(r)
	if org == nil {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}

	filter := audit.Filter{
		OrganizationID: org.ID,
		Type:           r.URL.Query().Get("type"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": s.audit.Search(filter)})
}
