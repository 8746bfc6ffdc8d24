package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"tourwise/backoffice/internal/db/repositories"
	"tourwise/backoffice/internal/models/dtos"
	gormModels "tourwise/backoffice/internal/models/gorm"
)

// Mock TourWriter
type mockTourWriter struct {
	upsertFunc func(ctx context.Context, operator *gormModels.Operator, brand string, rec dtos.TourRecord, now time.Time, dryRun bool) (*UpsertOutcome, error)
}

func (m *mockTourWriter) UpsertTour(ctx context.Context, operator *gormModels.Operator, brand string, rec dtos.TourRecord, now time.Time, dryRun bool) (*UpsertOutcome, error) {
	return m.upsertFunc(ctx, operator, brand, rec, now, dryRun)
}

func newTestWorker(db *gorm.DB, catalog *mockCatalogClient, writer TourWriter) *BrandSyncWorker {
	return NewBrandSyncWorker(
		catalog,
		repositories.NewOperatorRepo(db),
		repositories.NewTourRepo(db),
		repositories.NewDepartureRepo(db),
		repositories.NewSyncHistoryRepo(db),
		writer,
		nil,
	)
}

func catalogOf(n int) []dtos.TourRecord {
	records := make([]dtos.TourRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, dtos.TourRecord{
			ProviderIdentifier: fmt.Sprintf("T-%d", i),
			Season:             "2026",
			Name:               fmt.Sprintf("Tour %d", i),
		})
	}
	return records
}

func TestBrandSyncWorker_SyncBrand_IsolatesRecordFailures(t *testing.T) {
	db := setupTestDB(t)

	catalog := &mockCatalogClient{
		fetchCatalogFunc: func(ctx context.Context, brand string, currency string) ([]dtos.TourRecord, error) {
			return catalogOf(5), nil
		},
	}
	writer := &mockTourWriter{
		upsertFunc: func(ctx context.Context, operator *gormModels.Operator, brand string, rec dtos.TourRecord, now time.Time, dryRun bool) (*UpsertOutcome, error) {
			if rec.ProviderIdentifier == "T-3" {
				return nil, errors.New("malformed itinerary")
			}
			return &UpsertOutcome{TourCreated: true}, nil
		},
	}
	worker := newTestWorker(db, catalog, writer)

	m := worker.SyncBrand(context.Background(), "run-1", "adventures", "CAD", dtos.SyncOptions{ForceFullSync: true})

	if m.ToursCreated != 4 {
		t.Errorf("Expected 4 tours created, got %d", m.ToursCreated)
	}
	if len(m.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(m.Errors))
	}
	if m.Errors[0].ItemKey != "adventures/T-3/2026" {
		t.Errorf("Unexpected error item key: %s", m.Errors[0].ItemKey)
	}

	// History finalized as completed: progress was made
	var hist gormModels.SyncHistory
	if err := db.Where("run_id = ?", "run-1").First(&hist).Error; err != nil {
		t.Fatalf("Sync history not found: %v", err)
	}
	if hist.Status != "completed" {
		t.Errorf("Expected completed history, got %s", hist.Status)
	}
	if hist.ErrorCount != 1 {
		t.Errorf("Expected error count 1, got %d", hist.ErrorCount)
	}
}

func TestBrandSyncWorker_SyncBrand_CatalogFetchFailureIsBrandFatal(t *testing.T) {
	db := setupTestDB(t)

	catalog := &mockCatalogClient{
		fetchCatalogFunc: func(ctx context.Context, brand string, currency string) ([]dtos.TourRecord, error) {
			return nil, errors.New("connection refused")
		},
	}
	writer := &mockTourWriter{
		upsertFunc: func(ctx context.Context, operator *gormModels.Operator, brand string, rec dtos.TourRecord, now time.Time, dryRun bool) (*UpsertOutcome, error) {
			t.Fatal("Upserter must not run when the catalog fetch fails")
			return nil, nil
		},
	}
	worker := newTestWorker(db, catalog, writer)

	m := worker.SyncBrand(context.Background(), "run-2", "adventures", "CAD", dtos.SyncOptions{})

	if m.ToursSynced() != 0 {
		t.Errorf("Expected nothing synced, got %d", m.ToursSynced())
	}
	if len(m.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(m.Errors))
	}

	var hist gormModels.SyncHistory
	if err := db.Where("run_id = ?", "run-2").First(&hist).Error; err != nil {
		t.Fatalf("Sync history not found: %v", err)
	}
	if hist.Status != "failed" {
		t.Errorf("Expected failed history, got %s", hist.Status)
	}
}

func TestBrandSyncWorker_SyncBrand_SweepsStaleTours(t *testing.T) {
	db := setupTestDB(t)
	op := createTestOperator(t, db)

	// A tour from an earlier run that this catalog no longer contains
	stale := &gormModels.Tour{
		OperatorID:         op.ID,
		Provider:           "adventures",
		ProviderIdentifier: "GONE-1",
		Season:             "2026",
		IsActive:           true,
		LastSeenAt:         time.Now().Add(-48 * time.Hour),
	}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("Failed to seed stale tour: %v", err)
	}

	catalog := &mockCatalogClient{
		fetchCatalogFunc: func(ctx context.Context, brand string, currency string) ([]dtos.TourRecord, error) {
			return catalogOf(1), nil
		},
	}
	writer := &mockTourWriter{
		upsertFunc: func(ctx context.Context, operator *gormModels.Operator, brand string, rec dtos.TourRecord, now time.Time, dryRun bool) (*UpsertOutcome, error) {
			return &UpsertOutcome{TourCreated: true}, nil
		},
	}
	worker := newTestWorker(db, catalog, writer)

	m := worker.SyncBrand(context.Background(), "run-3", "adventures", "CAD", dtos.SyncOptions{})

	if m.ToursDeactivated != 1 {
		t.Errorf("Expected 1 tour deactivated, got %d", m.ToursDeactivated)
	}

	var swept gormModels.Tour
	if err := db.Where("provider_identifier = ?", "GONE-1").First(&swept).Error; err != nil {
		t.Fatalf("Stale tour not found: %v", err)
	}
	if swept.IsActive {
		t.Error("Expected stale tour marked inactive")
	}
}

func TestBrandSyncWorker_SyncBrand_ForceFullSkipsSweep(t *testing.T) {
	db := setupTestDB(t)
	op := createTestOperator(t, db)

	stale := &gormModels.Tour{
		OperatorID:         op.ID,
		Provider:           "adventures",
		ProviderIdentifier: "GONE-1",
		Season:             "2026",
		IsActive:           true,
		LastSeenAt:         time.Now().Add(-48 * time.Hour),
	}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("Failed to seed stale tour: %v", err)
	}

	catalog := &mockCatalogClient{
		fetchCatalogFunc: func(ctx context.Context, brand string, currency string) ([]dtos.TourRecord, error) {
			return catalogOf(1), nil
		},
	}
	writer := &mockTourWriter{
		upsertFunc: func(ctx context.Context, operator *gormModels.Operator, brand string, rec dtos.TourRecord, now time.Time, dryRun bool) (*UpsertOutcome, error) {
			return &UpsertOutcome{TourCreated: true}, nil
		},
	}
	worker := newTestWorker(db, catalog, writer)

	m := worker.SyncBrand(context.Background(), "run-4", "adventures", "CAD", dtos.SyncOptions{ForceFullSync: true})

	if m.ToursDeactivated != 0 {
		t.Errorf("Expected no deactivations on force-full sync, got %d", m.ToursDeactivated)
	}

	var kept gormModels.Tour
	if err := db.Where("provider_identifier = ?", "GONE-1").First(&kept).Error; err != nil {
		t.Fatalf("Tour not found: %v", err)
	}
	if !kept.IsActive {
		t.Error("Expected tour to stay active when the sweep is skipped")
	}
}

func TestBrandSyncWorker_SyncBrand_CancelledContextStopsLoop(t *testing.T) {
	db := setupTestDB(t)

	catalog := &mockCatalogClient{
		fetchCatalogFunc: func(ctx context.Context, brand string, currency string) ([]dtos.TourRecord, error) {
			return catalogOf(5), nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	processed := 0
	writer := &mockTourWriter{
		upsertFunc: func(ctx context.Context, operator *gormModels.Operator, brand string, rec dtos.TourRecord, now time.Time, dryRun bool) (*UpsertOutcome, error) {
			processed++
			if processed == 2 {
				cancel()
			}
			return &UpsertOutcome{TourCreated: true}, nil
		},
	}
	worker := newTestWorker(db, catalog, writer)

	m := worker.SyncBrand(ctx, "run-5", "adventures", "CAD", dtos.SyncOptions{})

	if processed != 2 {
		t.Errorf("Expected loop to stop after cancellation, processed %d", processed)
	}
	if m.ToursCreated != 2 {
		t.Errorf("Expected 2 tours created before cancellation, got %d", m.ToursCreated)
	}
	if len(m.Errors) != 1 {
		t.Errorf("Expected a deadline error recorded, got %d errors", len(m.Errors))
	}
	// No sweep after a cancelled run
	if m.ToursDeactivated != 0 {
		t.Errorf("Expected no sweep after cancellation, got %d", m.ToursDeactivated)
	}
}
