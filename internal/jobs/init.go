package jobs

import (
	"context"
	"log"

	"tourwise/backoffice/internal/services"
)

// Container holds references to background jobs for manual triggering
type Container struct {
	CatalogSync *CatalogSyncJob
}

// InitializeJobs creates and starts all scheduled jobs
func InitializeJobs(ctx context.Context, orchestrator *services.SyncOrchestrator) *Container {
	catalogSync := NewCatalogSyncJob(orchestrator)
	go catalogSync.RunScheduled(ctx)

	log.Printf("[Jobs] background jobs initialized")

	return &Container{
		CatalogSync: catalogSync,
	}
}
