package middleware

import (
	"net/http"
	"time"

	"github.com/blaisecz/sleep-coach/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// Metrics records request count and latency by chi route pattern, so path
// parameters do not blow up label cardinality.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := wrap(w)
			start := time.Now()

			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			m.ObserveHTTP(route, r.Method, sw.statusCode, time.Since(start))
		})
	}
}
