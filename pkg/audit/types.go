// Package audit records authorization denials and feature lifecycle
// transitions for later inspection. It consumes the event bus rather than
// being called directly, so publishers stay decoupled from auditing.
package audit

import (
	"time"
)

// Record is one audited occurrence
type Record struct {
	ID             int64          `json:"id"`
	Type           string         `json:"type"`
	OrganizationID int64          `json:"organization_id,omitempty"`
	UserID         int64          `json:"user_id,omitempty"`
	FeatureID      string         `json:"feature_id,omitempty"`
	Resource       string         `json:"resource,omitempty"`
	Permission     string         `json:"permission,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Filter narrows a Search. Zero values match everything.
type Filter struct {
	OrganizationID int64
	Type           string
	Limit          int
}
