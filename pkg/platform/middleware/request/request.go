// Package request assigns each request a correlation ID.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"soko/pkg/requestcontext"
)

// HeaderRequestID carries the correlation ID on responses (and inbound
// requests from trusted proxies).
const HeaderRequestID = "X-Request-Id"

// Middleware ensures every request carries a request ID in its context and
// echoes it on the response for client-side correlation. An inbound ID from
// the edge proxy is reused so traces line up across hops.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
