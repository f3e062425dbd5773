// Package features implements the organization-tier-scoped feature module
// registry: a process-wide catalog of capability units with tier-based
// availability, per-organization enabled/disabled state, and idempotent
// lifecycle hooks.
//
// Lifecycle per (organization, feature) pair:
//
//	NotInitialized -> Initialized(enabled) <-> Initialized(disabled)
//
// Initialization runs at most once; only user-configurable modules ever
// leave the enabled state.
package features
