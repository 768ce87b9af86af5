/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLogger: Structured request logging via zerolog
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/athletes/*       Athlete, location, quarter and template management
  /api/quarters/*       Slot filing, pattern apply/extract, submission
  /api/patterns/*       Standalone pattern validation
  /api/templates/*      Template application and defaults
  /api/scenarios/*      Demo scenarios

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
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Athlete routes
		r.Route("/athletes", func(r chi.Router) {
			r.Get("/", h.ListAthletes)
			r.Post("/", h.CreateAthlete)
			r.Get("/{id}", h.GetAthlete)
			r.Get("/{id}/locations", h.ListLocations)
			r.Put("/{id}/locations/{type}", h.PutLocation)
			r.Get("/{id}/quarters", h.ListQuarters)
			r.Post("/{id}/quarters", h.CreateQuarter)
			r.Get("/{id}/templates", h.ListTemplates)
			r.Post("/{id}/templates", h.SaveTemplate)
		})

		// Quarter routes
		r.Route("/quarters", func(r chi.Router) {
			r.Get("/{id}", h.GetQuarter)
			r.Get("/{id}/slots", h.GetSlots)
			r.Put("/{id}/slots/{date}", h.UpsertSlot)
			r.Post("/{id}/apply", h.ApplyPattern)
			r.Post("/{id}/extract", h.ExtractPattern)
			r.Post("/{id}/submit", h.SubmitQuarter)
			r.Get("/{id}/completion", h.GetCompletion)
		})

		// Pattern routes
		r.Route("/patterns", func(r chi.Router) {
			r.Post("/validate", h.ValidatePattern)
		})

		// Template routes
		r.Route("/templates", func(r chi.Router) {
			r.Post("/{id}/apply", h.ApplyTemplate)
			r.Post("/{id}/default", h.SetDefaultTemplate)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// requestLogger logs one line per request with method, path, status and
// duration.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
