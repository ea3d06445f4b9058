package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/blaisecz/sleep-coach/pkg/logger"
	"github.com/blaisecz/sleep-coach/pkg/problem"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recovery recovers from panics and returns a 500 error. The panic value is
// echoed to the client only when exposeDetail is set.
func Recovery(log *logger.Logger, exposeDetail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered",
					"panic", rec,
					"request_id", chimw.GetReqID(r.Context()),
					"stack", string(debug.Stack()),
				)
				detail := ""
				if exposeDetail {
					detail = fmt.Sprint(rec)
				}
				problem.InternalError(detail).Write(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
