package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefresh)

		// Telemetry ingest (device endpoint, room validated by id+name pair)
		r.Post("/telemetry/readings", s.handleIngestReadings)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/logout", s.handleLogout)

			// WS ticket requires authentication
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Dictionaries
			r.Get("/dictionaries", s.handleDictionaries)

			// Application endpoints
			r.Route("/applications", func(r chi.Router) {
				r.Post("/", s.handleCreateApplication)
				r.Get("/my", s.handleMyApplications)

				r.Group(func(r chi.Router) {
					r.Use(s.adminMiddleware)
					r.Get("/", s.handleListApplications)
					r.Get("/pending", s.handlePendingApplications)
					r.Get("/user/{userID}", s.handleUserApplications)
					r.Put("/{id}/decision", s.handleDecideApplication)
				})

				r.Get("/{id}", s.handleGetApplication)
			})

			// Room endpoints
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)
				r.Get("/my", s.handleMyRooms)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetRoom)
					r.Get("/sensors", s.handleRoomSensors)
					r.Get("/sensors/{kind}/{number}", s.handleGetSensor)
				})
			})

			// User endpoints
			r.Get("/users/me/profile", s.handleProfile)
			r.With(s.adminMiddleware).Get("/users", s.handleListUsers)

			// Home control
			r.Route("/control", func(r chi.Router) {
				r.Get("/mode", s.handleGetMode)
				r.Put("/mode", s.handleSetMode)
				r.Post("/toggle", s.handleToggle)
			})

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
