// Package middleware contains the HTTP glue between the surrounding web
// application and the authorization core: it materializes the request-scoped
// organization context and enforces permission and role checks on routes.
//
// Authentication itself happens upstream; these middlewares trust the
// identity headers the session collaborator sets.
package middleware
