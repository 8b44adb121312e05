/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/budget", h.GetBudget)
		r.Post("/reset", h.Reset)

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", h.LogExpense)
			r.Delete("/{id}", h.DeleteTransaction)
		})

		r.Post("/deposits", h.Deposit)

		r.Put("/income", h.SetIncome)
		r.Route("/income-sources", func(r chi.Router) {
			r.Post("/", h.AddIncomeSource)
			r.Delete("/{id}", h.RemoveIncomeSource)
		})

		r.Route("/bills", func(r chi.Router) {
			r.Put("/{name}", h.SetBill)
			r.Delete("/{name}", h.RemoveBill)
		})

		r.Put("/allocations/{category}", h.SetAllocation)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.AddCategory)
			r.Delete("/{name}", h.DeleteCategory)
			r.Post("/{name}/hide", h.HideCategory)
			r.Delete("/{name}/hide", h.UnhideCategory)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Post("/", h.AddGoal)
			r.Delete("/{id}", h.DeleteGoal)
		})
		r.Put("/emergency/plan", h.SetEmergencyPlan)

		r.Route("/advisor", func(r chi.Router) {
			r.Post("/allocations", h.ProposeAllocations)
			r.Post("/allocations/apply", h.ApplyAllocations)
			r.Post("/emergency", h.ProposeEmergencyPlan)
		})
	})

	return r
}
