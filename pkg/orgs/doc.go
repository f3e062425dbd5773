// Package orgs defines organizations, their subscription tiers, and the
// request-scoped organization context handed to the permission and feature
// layers. Organization records are owned by an external store; this package
// only reads them, plus a small in-memory directory used for wiring and
// tests.
package orgs
