package routes

import (
	"context"
	"net/http"
	"time"

	"tourwise/backoffice/internal/api"
	"tourwise/backoffice/internal/db"
	"tourwise/backoffice/internal/jobs"
	"tourwise/backoffice/internal/logging"
	"tourwise/backoffice/internal/metrics"
	"tourwise/backoffice/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func RegisterRoutes(upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, deps.Redis, upSince))

	// Setup scheduled jobs (nightly catalog sync)
	jobs.InitializeJobs(context.Background(), deps.Services.Orchestrator)

	syncHandler := api.NewSyncHandler(deps.Services.Orchestrator, deps.Repo.SyncHistory, deps.Services.MediaImport)

	RegisterAPIRoutes(r, syncHandler)

	return r
}
