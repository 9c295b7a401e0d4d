/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a dashboard frontend

ROUTE GROUPS:
  /api/calories/*   Calorie log
  /api/weight/*     Weight log, trend, projection
  /api/runs/*       Run log
  /api/bmi          BMI
  /api/summary      Window totals
  /api/sync/*       Sync trigger and audit trail

SECURITY NOTE:
  No authentication middleware. Bind to localhost unless fronted by a proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/fitlog/serve.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/calories", func(r chi.Router) {
			r.Get("/", h.ListCalories)
			r.Get("/asof/{date}", h.GetCaloriesAsOf)
		})

		r.Route("/weight", func(r chi.Router) {
			r.Get("/", h.ListWeight)
			r.Get("/asof/{date}", h.GetWeightAsOf)
			r.Get("/trend", h.GetWeightTrend)
			r.Get("/projection", h.GetWeightProjection)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.ListRuns)
			r.Get("/asof/{date}", h.GetRunAsOf)
		})

		r.Get("/bmi", h.GetBMI)
		r.Get("/summary", h.GetSummary)

		r.Route("/sync", func(r chi.Router) {
			r.Post("/", h.TriggerSync)
			r.Get("/runs", h.ListSyncRuns)
			r.Get("/schedule", h.GetSyncSchedule)
		})
	})

	return r
}
