// Package router assembles the gateway's chi HTTP transport: tenant auth,
// request logging and metrics, and the completion/status/budget/audit routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/v-shakthi/aigateway/internal/audit"
	"github.com/v-shakthi/aigateway/internal/auth"
	"github.com/v-shakthi/aigateway/internal/budget"
	"github.com/v-shakthi/aigateway/internal/config"
	"github.com/v-shakthi/aigateway/internal/handlers"
	"github.com/v-shakthi/aigateway/internal/middleware"
	"github.com/v-shakthi/aigateway/internal/pipeline"
	"github.com/v-shakthi/aigateway/internal/providerrouter"
)

// Deps bundles the already-constructed services the HTTP layer wires into
// routes. Built once at startup in cmd/server.
type Deps struct {
	Config         *config.Config
	Logger         *zap.Logger
	Authenticator  *auth.TenantAuthenticator
	AdminIssuer    *auth.AdminTokenIssuer
	Pipeline       *pipeline.Pipeline
	Budgets        *budget.Manager
	ProviderRouter *providerrouter.Router
	AuditLog       *audit.Logger
}

// New builds the gateway's HTTP handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics(d.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORS.AllowedOrigins,
		AllowedMethods:   d.Config.CORS.AllowedMethods,
		AllowedHeaders:   d.Config.CORS.AllowedHeaders,
		ExposedHeaders:   d.Config.CORS.ExposedHeaders,
		AllowCredentials: d.Config.CORS.AllowCredentials,
		MaxAge:           d.Config.CORS.MaxAge,
	}))

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	completionHandler := handlers.NewCompletionHandler(d.Pipeline, d.Logger)
	budgetHandler := handlers.NewBudgetHandler(d.Budgets)
	providersHandler := handlers.NewProvidersHandler(d.ProviderRouter)
	auditHandler := handlers.NewAuditHandler(d.AuditLog)
	adminBudgetHandler := handlers.NewAdminBudgetHandler(d.Budgets)

	r.Group(func(r chi.Router) {
		r.Use(middleware.TenantAuth(d.Authenticator, d.Config.Auth.CredentialHeader))

		r.Post("/v1/complete", completionHandler.Complete)
		r.Get("/v1/budget", budgetHandler.Get)
		r.Get("/v1/providers/status", providersHandler.Status)
		r.Get("/v1/audit/recent", auditHandler.Recent)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(d.AdminIssuer))

		r.Get("/v1/admin/budget/{tenant}", adminBudgetHandler.Get)
		r.Post("/v1/admin/budget/{tenant}/limit", adminBudgetHandler.SetLimit)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"message": "not found", "type": "invalid_request_error"}}`))
	})

	return r
}
