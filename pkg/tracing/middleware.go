package tracing

import (
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/logger"
)

// Middleware opens a root span per request, named after method and path
// and keyed by the request ID, and logs the tree when the request ends.
// Must run after the request ID middleware.
func Middleware(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := StartSpan(r.Context(), r.Method+" "+r.URL.Path, logger.RequestID(r.Context()))
			next.ServeHTTP(w, r.WithContext(ctx))
			span.End()
			span.Log()
		})
	}
}
