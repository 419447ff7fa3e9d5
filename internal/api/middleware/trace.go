// Package middleware provides the HTTP middleware applied by the router:
// request tracing and bearer-token authentication.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/imageforge/caption-api/internal/api/shared"
)

// Trace adds a trace ID to the request context. It should be applied early
// in the middleware chain so all subsequent handlers can correlate their
// logs.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())

		slog.Debug("request started",
			slog.String("trace_id", shared.GetTraceID(ctx)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
