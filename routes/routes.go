package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/agentpress/control-plane/app"
	"github.com/agentpress/control-plane/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	health := handlers.NewHealthHandler(deps.DB.DB, deps.Logger)
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Token issuing (operator only)
		r.Route("/auth", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole("operator"))
			r.Post("/tokens", handlers.IssueTokenHandler(deps))
		})

		// Decision evaluation (agents and operators)
		r.Route("/decisions", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.ExtractAgent)
			r.Post("/", handlers.EvaluateDecisionHandler(deps))
			r.Post("/release", handlers.ReleaseQuotaHandler(deps))
		})

		// Role template management (operator only)
		r.Route("/roles", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole("operator"))
			r.Get("/", handlers.ListRoleTemplatesHandler(deps))
			r.Post("/", handlers.CreateRoleTemplateHandler(deps))
			r.Get("/{id}", handlers.GetRoleTemplateHandler(deps))
			r.Put("/{id}", handlers.UpdateRoleTemplateHandler(deps))
			r.Delete("/{id}", handlers.DeactivateRoleTemplateHandler(deps))
		})

		// Agent management (operator only)
		r.Route("/agents", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole("operator"))
			r.Get("/", handlers.ListAgentsHandler(deps))
			r.Post("/", handlers.CreateAgentHandler(deps))
			r.Get("/{id}", handlers.GetAgentHandler(deps))
			r.Put("/{id}", handlers.UpdateAgentHandler(deps))
			r.Delete("/{id}", handlers.DeleteAgentHandler(deps))
		})

		// Site management (operator only)
		r.Route("/sites", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole("operator"))
			r.Get("/", handlers.ListSitesHandler(deps))
			r.Post("/", handlers.CreateSiteHandler(deps))
			r.Get("/{id}", handlers.GetSiteHandler(deps))
			r.Put("/{id}", handlers.UpdateSiteHandler(deps))
			r.Delete("/{id}", handlers.DeleteSiteHandler(deps))
		})

		// Audit trail (operator only)
		r.Route("/audit", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole("operator"))
			r.Get("/logs", handlers.ListAuditLogsHandler(deps))
			r.Get("/logs/{id}", handlers.GetAuditLogHandler(deps))
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
