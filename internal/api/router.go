package api

import (
	"net/http"

	_ "github.com/blaisecz/sleep-coach/docs"
	"github.com/blaisecz/sleep-coach/internal/api/handler"
	"github.com/blaisecz/sleep-coach/internal/api/middleware"
	"github.com/blaisecz/sleep-coach/internal/metrics"
	"github.com/blaisecz/sleep-coach/internal/ratelimit"
	"github.com/blaisecz/sleep-coach/pkg/logger"
	"github.com/blaisecz/sleep-coach/pkg/problem"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Options are the transport settings taken from config.
type Options struct {
	AllowedOrigins []string
	TrustProxy     bool
	ExposeDetail   bool
}

type Router struct {
	analysisHandler *handler.AnalysisHandler
	feedbackHandler *handler.FeedbackHandler
	limiter         *ratelimit.Limiter
	metrics         *metrics.Metrics
	log             *logger.Logger
	opts            Options
}

func NewRouter(
	analysisHandler *handler.AnalysisHandler,
	feedbackHandler *handler.FeedbackHandler,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
	log *logger.Logger,
	opts Options,
) *Router {
	if log == nil {
		log = logger.Nop()
	}
	return &Router{
		analysisHandler: analysisHandler,
		feedbackHandler: feedbackHandler,
		limiter:         limiter,
		metrics:         m,
		log:             log,
		opts:            opts,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(chimw.RequestID)
	if rt.opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recovery(rt.log, rt.opts.ExposeDetail))
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(rt.log))
	r.Use(middleware.Metrics(rt.metrics))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.NotFound().Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		problem.MethodNotAllowed().Write(w)
	})

	// Health check, never rate limited
	r.Get("/", handler.Health)
	r.Get("/health", handler.Health)

	if rt.metrics != nil {
		r.Handle("/metrics", rt.metrics.Handler())
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	r.Route("/api", func(r chi.Router) {
		if rt.limiter != nil {
			r.Use(middleware.RateLimit(rt.limiter, rt.metrics, rt.log))
		}
		// Analyze answers every verb itself.
		r.HandleFunc("/analyze", rt.analysisHandler.Analyze)
		r.Post("/feedback", rt.feedbackHandler.Submit)
	})

	return r
}
