package routes

import (
	"tourwise/backoffice/internal/api"
	"tourwise/backoffice/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers the tour-import routes behind auth and rate
// limiting. This keeps API route registration separate from the main router
// setup.
func RegisterAPIRoutes(r chi.Router, syncHandler *api.SyncHandler) {

	r.Route("/tour-import", func(ti chi.Router) {
		ti.Use(middleware.RateLimitMiddleware)
		ti.Use(middleware.AuthMiddleware())

		ti.Post("/sync", syncHandler.TriggerSync())
		ti.Post("/sync/dry-run", syncHandler.TriggerDryRun())
		ti.Get("/sync/status", syncHandler.GetStatus())
		ti.Get("/brands", syncHandler.GetBrands())
		ti.Get("/history", syncHandler.GetHistory())
		ti.Post("/media/import", syncHandler.ImportMedia())
	})
}
