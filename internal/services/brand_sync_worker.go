package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"tourwise/backoffice/internal/constants"
	"tourwise/backoffice/internal/db/repositories"
	"tourwise/backoffice/internal/metrics"
	"tourwise/backoffice/internal/models/dtos"
	gormModels "tourwise/backoffice/internal/models/gorm"
	"tourwise/backoffice/internal/providers"
)

// TourWriter reconciles one fetched record against the store
type TourWriter interface {
	UpsertTour(ctx context.Context, operator *gormModels.Operator, brand string, rec dtos.TourRecord, now time.Time, dryRun bool) (*UpsertOutcome, error)
}

// BrandSyncWorker runs one brand's full sync cycle: fetch, per-record upsert
// with isolation, staleness sweep, history bookkeeping.
type BrandSyncWorker struct {
	catalog    providers.CatalogClient
	operators  *repositories.OperatorRepo
	tours      *repositories.TourRepo
	departures *repositories.DepartureRepo
	history    *repositories.SyncHistoryRepo
	upserter   TourWriter
	metrics    *metrics.MetricsRegistry
}

// NewBrandSyncWorker creates a new brand sync worker
func NewBrandSyncWorker(
	catalog providers.CatalogClient,
	operators *repositories.OperatorRepo,
	tours *repositories.TourRepo,
	departures *repositories.DepartureRepo,
	history *repositories.SyncHistoryRepo,
	upserter TourWriter,
	metricsReg *metrics.MetricsRegistry,
) *BrandSyncWorker {
	return &BrandSyncWorker{
		catalog:    catalog,
		operators:  operators,
		tours:      tours,
		departures: departures,
		history:    history,
		upserter:   upserter,
		metrics:    metricsReg,
	}
}

// SyncBrand runs one brand's cycle and always returns metrics; a brand-fatal
// failure is recorded in the metrics, never raised to the orchestrator.
func (w *BrandSyncWorker) SyncBrand(ctx context.Context, runID, brand, currency string, opts dtos.SyncOptions) dtos.SyncMetrics {
	start := time.Now()
	m := dtos.SyncMetrics{Brand: brand}
	log.Printf("[BrandSync] %s: starting (dry_run=%v force_full=%v)", brand, opts.DryRun, opts.ForceFullSync)

	// History bookkeeping must never abort a sync
	histRec, err := w.history.Start(ctx, runID, brand, opts.DryRun, start)
	if err != nil {
		log.Printf("[BrandSync] %s: failed to create sync history record: %v", brand, err)
		histRec = nil
	}

	status := w.runCycle(ctx, brand, currency, opts, &m)

	m.DurationMs = time.Since(start).Milliseconds()

	if histRec != nil {
		if err := w.history.Finalize(ctx, histRec.ID, status, &m); err != nil {
			log.Printf("[BrandSync] %s: failed to finalize sync history record: %v", brand, err)
		}
	}

	if w.metrics != nil {
		w.metrics.SyncRunDuration.WithLabelValues(brand).Observe(time.Since(start).Seconds())
		w.metrics.ToursSyncedTotal.WithLabelValues(brand, "created").Add(float64(m.ToursCreated))
		w.metrics.ToursSyncedTotal.WithLabelValues(brand, "updated").Add(float64(m.ToursUpdated))
		w.metrics.SyncErrorsTotal.WithLabelValues(brand).Add(float64(len(m.Errors)))
	}

	log.Printf("[BrandSync] %s: done in %s. created=%d updated=%d deactivated=%d errors=%d",
		brand, time.Since(start).Truncate(time.Millisecond),
		m.ToursCreated, m.ToursUpdated, m.ToursDeactivated, len(m.Errors))

	return m
}

// runCycle executes the brand cycle and returns the history status to record
func (w *BrandSyncWorker) runCycle(ctx context.Context, brand, currency string, opts dtos.SyncOptions, m *dtos.SyncMetrics) string {
	records, err := w.catalog.FetchCatalog(ctx, brand, currency)
	if err != nil {
		m.RecordError(brand, fmt.Errorf("catalog fetch failed: %w", err), constants.MaxRecordedSyncErrors)
		return constants.HistoryStatusFailed
	}

	operator, err := w.operators.FindOrCreateByCode(ctx, brand, brand)
	if err != nil {
		m.RecordError(brand, fmt.Errorf("operator resolution failed: %w", err), constants.MaxRecordedSyncErrors)
		return constants.HistoryStatusFailed
	}

	// Captured before any record is processed: the staleness sweep marks
	// inactive everything this run did not touch after this instant.
	runStartedAt := time.Now()

	for _, rec := range records {
		if ctx.Err() != nil {
			m.RecordError(itemKey(brand, rec), fmt.Errorf("run deadline exceeded: %w", ctx.Err()), constants.MaxRecordedSyncErrors)
			break
		}

		outcome, err := w.upserter.UpsertTour(ctx, operator, brand, rec, time.Now(), opts.DryRun)
		if err != nil {
			// One malformed record must never abort the brand
			m.RecordError(itemKey(brand, rec), err, constants.MaxRecordedSyncErrors)
			continue
		}

		if outcome.TourCreated {
			m.ToursCreated++
		} else {
			m.ToursUpdated++
		}
		m.DeparturesCreated += outcome.DeparturesCreated
		m.DeparturesUpdated += outcome.DeparturesUpdated
	}

	if !opts.ForceFullSync && !opts.DryRun && ctx.Err() == nil {
		toursSwept, err := w.tours.MarkStaleInactive(ctx, operator.ID, runStartedAt)
		if err != nil {
			m.RecordError(brand, fmt.Errorf("tour staleness sweep failed: %w", err), constants.MaxRecordedSyncErrors)
		} else {
			m.ToursDeactivated = int(toursSwept)
		}

		depsSwept, err := w.departures.MarkStaleInactiveForOperator(ctx, operator.ID, runStartedAt)
		if err != nil {
			m.RecordError(brand, fmt.Errorf("departure staleness sweep failed: %w", err), constants.MaxRecordedSyncErrors)
		} else {
			m.DeparturesDeactivated = int(depsSwept)
		}
	}

	if len(m.Errors) > 0 && m.ToursSynced() == 0 {
		return constants.HistoryStatusFailed
	}
	return constants.HistoryStatusCompleted
}

// itemKey tags an error with the record's natural identifier
func itemKey(brand string, rec dtos.TourRecord) string {
	provider := rec.Provider
	if provider == "" {
		provider = brand
	}
	return fmt.Sprintf("%s/%s/%s", provider, rec.ProviderIdentifier, rec.Season)
}
