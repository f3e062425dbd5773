// Package observability provides structured logging and Prometheus metrics
// for the authorization and feature-gating core.
package observability
