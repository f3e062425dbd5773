package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/crewplane/crewd/pkg/observability"
)

// HeaderRequestID carries the request ID back to the caller and accepts one
// from a trusted upstream proxy.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns each request an ID, reusing the inbound header when
// present, and stores it on the request context for the logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, requestID)
		ctx := observability.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
