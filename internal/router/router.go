// Package router sets up all HTTP routes and middleware chains for the
// uisketch API server.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"uisketch/internal/handlers"
	"uisketch/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(api *handlers.API, jwtSecret string) chi.Router {
	r := chi.NewRouter()

	// Global middleware applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	// API routes require a valid bearer token.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtSecret))

		r.Route("/mockups", func(r chi.Router) {
			r.Post("/", api.CreateMockup)
			r.Get("/", api.ListMockups)
			r.Get("/{id}", api.GetMockup)
			r.Post("/{id}/versions/{versionID}/edit", api.EditVariation)
		})

		r.Get("/credits", api.GetCredits)
	})

	return r
}

// healthHandler responds to liveness probes.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
