// Package rest wires the HTTP routes for the explorer service.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"explorer-backend/application/explorer"
	querybus "explorer-backend/application/queries/bus"
	"explorer-backend/infrastructure/config"
	"explorer-backend/interfaces/http/rest/handlers"
	"explorer-backend/interfaces/http/rest/middleware"
	"explorer-backend/pkg/observability"
)

// serviceTitle is what the dashboard page calls the service.
const serviceTitle = "Universe Explorer"

// Router creates and configures the HTTP router
type Router struct {
	cfg      *config.Config
	queryBus *querybus.QueryBus
	runner   *explorer.Runner
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	queryBus *querybus.QueryBus,
	runner *explorer.Runner,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:      cfg,
		queryBus: queryBus,
		runner:   runner,
		metrics:  metrics,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// Metrics
	router.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(rt.metrics.Registry(), promhttp.HandlerOpts{}))

	// Dashboard
	dashboardHandler := handlers.NewDashboardHandler(serviceTitle, rt.logger)
	router.Get("/", dashboardHandler.Dashboard)

	// Explorer endpoints
	explorerHandler := handlers.NewExplorerHandler(rt.queryBus, rt.runner, rt.logger)
	router.Get("/status", explorerHandler.Status)
	router.Get("/insights", explorerHandler.Insights)
	router.Get("/search/{term}", explorerHandler.Search)
	router.Get("/explore", explorerHandler.Explore)

	// Re-discovery is guarded when a token secret is configured
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken(rt.cfg.JWTSecret, rt.cfg.JWTIssuer))
		r.Get("/discover", explorerHandler.Discover)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests. The engine has no error
// state: once bootstrap returns, the service is ready even with an empty
// universe.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
