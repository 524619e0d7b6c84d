/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from X-Forwarded-For / X-Real-IP
  3. Logger:     Structured request logging (logging.Middleware)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. Metrics:    Prometheus request count and latency per route
  6. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/user, /api/users/*   Users
  /api/walk                 Walk writes
  /api/stats/*              Computed statistics
  /api/scenarios/*          Demo scenarios (when a DataStore is configured)
  /healthz                  Liveness
  /metrics                  Prometheus exposition

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/walk-ledger/logging"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/user", h.GetCurrentUser)
		r.Get("/users/{id}", h.GetUser)

		r.Route("/walk", func(r chi.Router) {
			r.Post("/", h.LogWalk)
			r.Delete("/", h.RemoveWalk)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", h.GetMonthlyStats)
			r.Get("/range", h.GetRangeStats)
		})

		if h.Store != nil {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
				r.Post("/reset", h.ResetStore)
			})
		}
	})

	return r
}
