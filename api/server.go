/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  unique ID per request for tracing
  2. Recoverer:  panic recovery (500 instead of crash)
  3. zerolog request logger
  4. CORS for the browser client

ROUTE GROUPS:
  /api/auth/*                login, me, change-password
  /api/staff/*               roster management (writes are admin-only)
  /api/shifts/*              calendar (writes are admin-only)
  /api/shift-requests/*      open-shift bids
  /api/trade-requests/*      swap proposals
  /api/time-off-requests/*   time-off flow
  /api/absences              emergency call-outs
  /api/dashboard             role-dependent summary

SEE ALSO:
  - handlers.go: handler implementations
  - middleware.go: auth and logging middleware
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.Me)
			r.Post("/auth/change-password", h.ChangePassword)

			r.Route("/staff", func(r chi.Router) {
				r.Get("/", h.ListStaff)
				r.Get("/{id}", h.GetStaff)
				r.Group(func(r chi.Router) {
					r.Use(h.requireAdmin)
					r.Post("/", h.CreateStaff)
					r.Put("/{id}", h.UpdateStaff)
					r.Post("/{id}/reset-password", h.ResetStaffPassword)
				})
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/", h.ListShifts)
				r.Get("/hours-check", h.HoursCheck)
				r.Group(func(r chi.Router) {
					r.Use(h.requireAdmin)
					r.Post("/", h.CreateShift)
					r.Put("/{id}", h.UpdateShift)
					r.Delete("/{id}", h.DeleteShift)
				})
			})

			r.Route("/shift-requests", func(r chi.Router) {
				r.Get("/", h.ListShiftRequests)
				r.Post("/", h.CreateShiftRequest)
				r.Group(func(r chi.Router) {
					r.Use(h.requireAdmin)
					r.Post("/{id}/approve", h.ApproveShiftRequest)
					r.Post("/{id}/deny", h.DenyShiftRequest)
				})
			})

			r.Route("/trade-requests", func(r chi.Router) {
				r.Get("/", h.ListTradeRequests)
				r.Post("/", h.CreateTradeRequest)
				// Target-party authorization happens in the exchange engine.
				r.Post("/{id}/approve", h.ApproveTrade)
				r.Post("/{id}/deny", h.DenyTrade)
				r.With(h.requireAdmin).Post("/{id}/finalize", h.FinalizeTrade)
			})

			r.Route("/time-off-requests", func(r chi.Router) {
				r.Get("/", h.ListTimeOffRequests)
				r.Post("/", h.CreateTimeOffRequest)
				r.Group(func(r chi.Router) {
					r.Use(h.requireAdmin)
					r.Post("/{id}/approve", h.ApproveTimeOff)
					r.Post("/{id}/deny", h.DenyTimeOff)
				})
			})

			r.Post("/absences", h.ReportAbsence)
			r.Get("/dashboard", h.Dashboard)
		})
	})

	return r
}
