package repositories

import (
	"context"
	"time"

	"tourwise/backoffice/internal/constants"
	"tourwise/backoffice/internal/models/dtos"
	"tourwise/backoffice/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// SyncHistoryRepo handles the sync run audit trail
type SyncHistoryRepo struct {
	db *gormlib.DB
}

// NewSyncHistoryRepo creates a new sync history repository
func NewSyncHistoryRepo(db *gormlib.DB) *SyncHistoryRepo {
	return &SyncHistoryRepo{db: db}
}

// Start records a brand sync as running and returns the history row
func (r *SyncHistoryRepo) Start(ctx context.Context, runID, brand string, dryRun bool, startedAt time.Time) (*gorm.SyncHistory, error) {
	rec := &gorm.SyncHistory{
		RunID:     runID,
		Brand:     brand,
		Status:    constants.HistoryStatusRunning,
		DryRun:    dryRun,
		StartedAt: startedAt,
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// Finalize writes the terminal status and counts for a brand sync
func (r *SyncHistoryRepo) Finalize(ctx context.Context, id string, status string, metrics *dtos.SyncMetrics) error {
	now := time.Now()
	firstError := ""
	if len(metrics.Errors) > 0 {
		firstError = metrics.Errors[0].Message
	}

	return r.db.WithContext(ctx).
		Model(&gorm.SyncHistory{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":                 status,
			"tours_created":          metrics.ToursCreated,
			"tours_updated":          metrics.ToursUpdated,
			"tours_deactivated":      metrics.ToursDeactivated,
			"departures_created":     metrics.DeparturesCreated,
			"departures_updated":     metrics.DeparturesUpdated,
			"departures_deactivated": metrics.DeparturesDeactivated,
			"error_count":            len(metrics.Errors),
			"first_error":            firstError,
			"finished_at":            now,
			"duration_ms":            metrics.DurationMs,
		}).Error
}

// ListRecent returns recent history rows, optionally filtered by brand
func (r *SyncHistoryRepo) ListRecent(ctx context.Context, brand string, limit int) ([]gorm.SyncHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit)
	if brand != "" {
		q = q.Where("brand = ?", brand)
	}

	var rows []gorm.SyncHistory
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
