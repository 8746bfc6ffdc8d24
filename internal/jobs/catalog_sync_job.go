package jobs

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"tourwise/backoffice/internal/models/dtos"
	"tourwise/backoffice/internal/services"
)

// CatalogSyncJob triggers the nightly catalog sync at a fixed local hour in
// a fixed timezone. The feature flag and the environment guard both gate it;
// a disabled flag or non-primary environment skips quietly.
type CatalogSyncJob struct {
	orchestrator *services.SyncOrchestrator

	enabled bool
	hour    int
	loc     *time.Location
}

// NewCatalogSyncJob creates the scheduled trigger from environment config
func NewCatalogSyncJob(orchestrator *services.SyncOrchestrator) *CatalogSyncJob {
	enabled := os.Getenv("SYNC_SCHEDULE_ENABLED") == "true"

	hour := 3
	if v := os.Getenv("SYNC_SCHEDULE_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			hour = n
		}
	}

	tz := os.Getenv("SYNC_SCHEDULE_TZ")
	if tz == "" {
		tz = "America/Toronto"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("[CatalogSyncJob] invalid timezone %q, falling back to UTC: %v", tz, err)
		loc = time.UTC
	}

	return &CatalogSyncJob{
		orchestrator: orchestrator,
		enabled:      enabled,
		hour:         hour,
		loc:          loc,
	}
}

// RunScheduled blocks, firing the sync at the configured wall-clock time
// each day until the context is cancelled.
func (j *CatalogSyncJob) RunScheduled(ctx context.Context) {
	log.Printf("[CatalogSyncJob] scheduler started: enabled=%v hour=%02d:00 tz=%s",
		j.enabled, j.hour, j.loc.String())

	for {
		next := j.nextRunTime(time.Now().In(j.loc))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			j.runOnce(ctx)
		case <-ctx.Done():
			timer.Stop()
			log.Printf("[CatalogSyncJob] scheduler shutting down")
			return
		}
	}
}

// runOnce fires a single scheduled sync, honoring the gates
func (j *CatalogSyncJob) runOnce(ctx context.Context) {
	if !j.enabled {
		log.Printf("[CatalogSyncJob] schedule disabled, skipping run")
		return
	}

	result, err := j.orchestrator.RunSync(ctx, dtos.SyncOptions{})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEnvNotPermitted):
			// Non-primary environments skip quietly unless bypassed
			log.Printf("[CatalogSyncJob] environment not permitted, skipping run")
		case errors.Is(err, services.ErrSyncInProgress), errors.Is(err, services.ErrLockNotAcquired):
			log.Printf("[CatalogSyncJob] sync already running elsewhere, skipping run")
		default:
			log.Printf("[CatalogSyncJob] scheduled sync failed: %v", err)
		}
		return
	}

	log.Printf("[CatalogSyncJob] scheduled sync finished: run=%s status=%s", result.RunID, result.Status)
}

// nextRunTime returns the next occurrence of the configured hour
func (j *CatalogSyncJob) nextRunTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), j.hour, 0, 0, 0, j.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
