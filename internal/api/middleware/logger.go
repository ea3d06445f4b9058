package middleware

import (
	"net/http"
	"time"

	"github.com/blaisecz/sleep-coach/pkg/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logger writes one structured line per request.
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := wrap(w)
			start := time.Now()

			next.ServeHTTP(sw, r)

			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", r.RemoteAddr,
				"request_id", chimw.GetReqID(r.Context()),
			}
			switch {
			case sw.statusCode >= http.StatusInternalServerError:
				log.Error("request", kv...)
			case sw.statusCode >= http.StatusBadRequest:
				log.Warn("request", kv...)
			default:
				log.Info("request", kv...)
			}
		})
	}
}
