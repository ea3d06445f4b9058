package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/blaisecz/sleep-coach/internal/metrics"
	"github.com/blaisecz/sleep-coach/internal/ratelimit"
	"github.com/blaisecz/sleep-coach/pkg/logger"
	"github.com/blaisecz/sleep-coach/pkg/problem"
)

// RateLimit rejects requests over the limiter's budget with 429. The key is
// the client IP from RemoteAddr, which chi's RealIP rewrites when the
// service runs behind a trusted proxy. Store failures let the request pass.
func RateLimit(l *ratelimit.Limiter, m *metrics.Metrics, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := l.Allow(r.Context(), clientIP(r.RemoteAddr))
			if err != nil {
				log.Error("rate limiter unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				m.IncRateLimited()
				h.Set("Retry-After", strconv.Itoa(int(d.RetryAfter(time.Now()).Seconds())))
				problem.RateLimited().Write(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err == nil {
		return host
	}
	return remoteAddr
}
