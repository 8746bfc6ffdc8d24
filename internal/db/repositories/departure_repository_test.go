package repositories

import (
	"context"
	"testing"
	"time"

	"tourwise/backoffice/internal/models/dtos"
	"tourwise/backoffice/internal/models/gorm"
)

func newFinalizedMetrics() *dtos.SyncMetrics {
	return &dtos.SyncMetrics{
		Brand:        "adventures",
		ToursCreated: 3,
		ToursUpdated: 2,
		Errors: []dtos.SyncError{
			{ItemKey: "adventures/T-4/2026", Message: "record 4 exploded", Timestamp: time.Now()},
		},
		DurationMs: 1234,
	}
}

func TestDepartureRepo_FindByNaturalKey_NilLandStartDate(t *testing.T) {
	db := setupTestDB(t)
	op := seedOperator(t, db, "adventures")
	tour := seedTour(t, db, op.ID, "T-1", true, time.Now())

	land := time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)
	withLand := &gorm.Departure{
		TourID:        tour.ID,
		DepartureCode: "DEP-1",
		Season:        "2026",
		LandStartDate: &land,
	}
	withoutLand := &gorm.Departure{
		TourID:        tour.ID,
		DepartureCode: "DEP-1",
		Season:        "2026",
	}
	if err := db.Create(withLand).Error; err != nil {
		t.Fatalf("Failed to seed departure: %v", err)
	}
	if err := db.Create(withoutLand).Error; err != nil {
		t.Fatalf("Failed to seed departure: %v", err)
	}

	repo := NewDepartureRepo(db)
	ctx := context.Background()

	// nil matches only the NULL row, never "any row"
	found, err := repo.FindByNaturalKey(ctx, tour.ID, "DEP-1", "2026", nil)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if found == nil || found.ID != withoutLand.ID {
		t.Error("Expected the NULL land-start-date row for a nil key part")
	}

	found, err = repo.FindByNaturalKey(ctx, tour.ID, "DEP-1", "2026", &land)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if found == nil || found.ID != withLand.ID {
		t.Error("Expected the dated row for a concrete land start date")
	}
}

func TestDepartureRepo_ReplaceCabinPricings(t *testing.T) {
	db := setupTestDB(t)
	op := seedOperator(t, db, "adventures")
	tour := seedTour(t, db, op.ID, "T-1", true, time.Now())

	dep := &gorm.Departure{TourID: tour.ID, DepartureCode: "DEP-1", Season: "2026"}
	if err := db.Create(dep).Error; err != nil {
		t.Fatalf("Failed to seed departure: %v", err)
	}

	repo := NewDepartureRepo(db)
	ctx := context.Background()

	if err := repo.ReplaceCabinPricings(ctx, dep.ID, []gorm.CabinPricing{
		{DepartureID: dep.ID, Category: "STD", PriceCents: 199999, Currency: "CAD"},
		{DepartureID: dep.ID, Category: "DLX", PriceCents: 249900, Currency: "CAD"},
	}); err != nil {
		t.Fatalf("First replace failed: %v", err)
	}

	if err := repo.ReplaceCabinPricings(ctx, dep.ID, []gorm.CabinPricing{
		{DepartureID: dep.ID, Category: "STD", PriceCents: 189999, Currency: "CAD"},
	}); err != nil {
		t.Fatalf("Second replace failed: %v", err)
	}

	var rows []gorm.CabinPricing
	if err := db.Where("departure_id = ?", dep.ID).Find(&rows).Error; err != nil {
		t.Fatalf("Failed to load pricing: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 pricing row after replace, got %d", len(rows))
	}
	if rows[0].PriceCents != 189999 {
		t.Errorf("Expected replacement price, got %d", rows[0].PriceCents)
	}
}

func TestDepartureRepo_MarkStaleInactiveForOperator(t *testing.T) {
	db := setupTestDB(t)
	op := seedOperator(t, db, "adventures")
	other := seedOperator(t, db, "expeditions")

	tour := seedTour(t, db, op.ID, "T-1", true, time.Now())
	otherTour := seedTour(t, db, other.ID, "T-2", true, time.Now())

	cutoff := time.Now()
	stale := &gorm.Departure{TourID: tour.ID, DepartureCode: "STALE", Season: "2026", IsActive: true, LastSeenAt: cutoff.Add(-time.Hour)}
	fresh := &gorm.Departure{TourID: tour.ID, DepartureCode: "FRESH", Season: "2026", IsActive: true, LastSeenAt: cutoff.Add(time.Minute)}
	foreign := &gorm.Departure{TourID: otherTour.ID, DepartureCode: "OTHER", Season: "2026", IsActive: true, LastSeenAt: cutoff.Add(-time.Hour)}
	for _, d := range []*gorm.Departure{stale, fresh, foreign} {
		if err := db.Create(d).Error; err != nil {
			t.Fatalf("Failed to seed departure %s: %v", d.DepartureCode, err)
		}
	}

	repo := NewDepartureRepo(db)

	swept, err := repo.MarkStaleInactiveForOperator(context.Background(), op.ID, cutoff)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if swept != 1 {
		t.Errorf("Expected 1 departure swept, got %d", swept)
	}

	var got gorm.Departure
	db.First(&got, "id = ?", stale.ID)
	if got.IsActive {
		t.Error("Expected stale departure inactive")
	}
	db.First(&got, "id = ?", fresh.ID)
	if !got.IsActive {
		t.Error("Expected fresh departure untouched")
	}
	db.First(&got, "id = ?", foreign.ID)
	if !got.IsActive {
		t.Error("Expected other operator's departure untouched")
	}
}

func TestOperatorRepo_FindOrCreateByCode_CaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOperatorRepo(db)
	ctx := context.Background()

	created, err := repo.FindOrCreateByCode(ctx, "Adventures", "Adventures")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindOrCreateByCode(ctx, "adventures", "adventures")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.ID != created.ID {
		t.Error("Expected casing drift to resolve to the same operator")
	}

	var count int64
	db.Model(&gorm.Operator{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 operator row, got %d", count)
	}
}

func TestSyncHistoryRepo_StartAndFinalize(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncHistoryRepo(db)
	ctx := context.Background()

	rec, err := repo.Start(ctx, "run-1", "adventures", false, time.Now())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if rec.Status != "running" {
		t.Errorf("Expected running status, got %s", rec.Status)
	}

	metricsOut := newFinalizedMetrics()
	if err := repo.Finalize(ctx, rec.ID, "completed", metricsOut); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	var got gorm.SyncHistory
	if err := db.First(&got, "id = ?", rec.ID).Error; err != nil {
		t.Fatalf("History not found: %v", err)
	}
	if got.Status != "completed" {
		t.Errorf("Expected completed, got %s", got.Status)
	}
	if got.ToursCreated != 3 || got.ToursUpdated != 2 {
		t.Errorf("Unexpected counts: created=%d updated=%d", got.ToursCreated, got.ToursUpdated)
	}
	if got.ErrorCount != 1 || got.FirstError != "record 4 exploded" {
		t.Errorf("Unexpected error fields: count=%d first=%q", got.ErrorCount, got.FirstError)
	}
	if got.FinishedAt == nil {
		t.Error("Expected finished_at set")
	}
}

func TestSyncHistoryRepo_ListRecent_ClampsLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncHistoryRepo(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Start(ctx, "run-1", "adventures", false, time.Now().Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
	}
	if _, err := repo.Start(ctx, "run-1", "expeditions", false, time.Now()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	rows, err := repo.ListRecent(ctx, "", -5)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("Expected all 4 rows under the clamped default, got %d", len(rows))
	}

	rows, err = repo.ListRecent(ctx, "adventures", 2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows for brand filter with limit, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Brand != "adventures" {
			t.Errorf("Expected brand filter applied, got %s", row.Brand)
		}
	}
}
