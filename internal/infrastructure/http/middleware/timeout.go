package middleware

import (
	"context"
	"net/http"
	"time"
)

// RequestTimeout bounds each inbound request's context. SRI lookups chain
// several slow upstream calls, so the bound is generous but finite.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
