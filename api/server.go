/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging on zap
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /healthz               Liveness
  /api/evaluations       Evaluations
  /api/config/*          Configuration layers
  /api/orgs/{org}/*      Sell points and preventivi of an org
  /api/preventivi/{id}   Saved evaluations
  /api/scenarios/*       Demo scenarios

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/evaluations", h.Evaluate)

		r.Route("/config", func(r chi.Router) {
			r.Get("/system", h.GetSystemLayer)
			r.Put("/system", h.PutSystemLayer)
			r.Route("/orgs/{org}", func(r chi.Router) {
				r.Get("/", h.GetOrgLayer)
				r.Put("/", h.PutOrgLayer)
				r.Get("/effective", h.GetEffectiveConfig)
				r.Get("/resolve", h.ResolveConfig)
			})
		})

		r.Route("/orgs/{org}", func(r chi.Router) {
			r.Get("/sellpoints", h.ListSellPoints)
			r.Post("/sellpoints", h.SaveSellPoints)
			r.Get("/preventivi", h.ListPreventivi)
			r.Post("/preventivi", h.CreatePreventivo)
		})

		r.Get("/preventivi/{id}", h.GetPreventivo)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/{name}/evaluate", h.EvaluateScenario)
		})
	})

	return r
}

// requestLogger logs one line per request on zap.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
