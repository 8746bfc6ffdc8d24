package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"tourwise/backoffice/internal/db/repositories"
	gormModels "tourwise/backoffice/internal/models/gorm"
)

func TestImportAll_PreservesOrder(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	results := ImportAll(context.Background(), items, func(ctx context.Context, item string) (string, error) {
		if item == "c" {
			return "", errors.New("boom")
		}
		return strings.ToUpper(item), nil
	}, 3)

	if len(results) != len(items) {
		t.Fatalf("Expected %d results, got %d", len(items), len(results))
	}

	for i, item := range items {
		r := results[i]
		if item == "c" {
			if r.Err == nil {
				t.Errorf("Expected error at index %d", i)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("Unexpected error at index %d: %v", i, r.Err)
		}
		if r.Value != strings.ToUpper(item) {
			t.Errorf("Result at index %d does not match item %q: got %q", i, item, r.Value)
		}
	}
}

func TestImportAll_BoundsConcurrency(t *testing.T) {
	items := make([]int, 20)

	var inFlight, peak atomic.Int64
	done := make(chan struct{}, len(items))

	ImportAll(context.Background(), items, func(ctx context.Context, item int) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		done <- struct{}{}
		inFlight.Add(-1)
		return 0, nil
	}, 4)

	if p := peak.Load(); p > 4 {
		t.Errorf("Expected at most 4 workers in flight, observed %d", p)
	}
}

func TestImportAll_EmptyInput(t *testing.T) {
	results := ImportAll(context.Background(), nil, func(ctx context.Context, item string) (string, error) {
		t.Fatal("Worker must not run for empty input")
		return "", nil
	}, 4)
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestMediaImportService_ImportTourMedia_DedupeAndSkip(t *testing.T) {
	db := setupTestDB(t)
	op := createTestOperator(t, db)

	tour := &gormModels.Tour{
		OperatorID:         op.ID,
		Provider:           "adventures",
		ProviderIdentifier: "T-1",
		Season:             "2026",
	}
	if err := db.Create(tour).Error; err != nil {
		t.Fatalf("Failed to create tour: %v", err)
	}

	var fetches atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		if strings.Contains(r.URL.Path, "broken") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, "image-bytes")
	}))
	defer srv.Close()

	existing := srv.URL + "/already.jpg"
	if err := db.Create(&gormModels.TourMedia{TourID: tour.ID, URL: existing, Kind: "image"}).Error; err != nil {
		t.Fatalf("Failed to seed existing media: %v", err)
	}

	svc := NewMediaImportService(repositories.NewTourRepo(db), nil)

	urls := []string{
		srv.URL + "/new.jpg",
		srv.URL + "/new.jpg", // duplicate within the batch
		existing,             // already stored
		srv.URL + "/broken.jpg",
	}

	report, err := svc.ImportTourMedia(context.Background(), tour.ID, urls)
	if err != nil {
		t.Fatalf("ImportTourMedia failed: %v", err)
	}

	if report.Successful != 1 {
		t.Errorf("Expected 1 successful, got %d", report.Successful)
	}
	if report.Skipped != 2 {
		t.Errorf("Expected 2 skipped, got %d", report.Skipped)
	}
	if report.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", report.Failed)
	}
	if len(report.Items) != len(urls) {
		t.Fatalf("Expected %d positional items, got %d", len(urls), len(report.Items))
	}
	if !report.Items[0].OK {
		t.Error("Expected first occurrence of the new URL to succeed")
	}
	if !report.Items[1].Skipped {
		t.Error("Expected in-batch duplicate to be skipped")
	}
	if !report.Items[2].Skipped {
		t.Error("Expected already-stored URL to be skipped")
	}
	if report.Items[3].Error == "" {
		t.Error("Expected broken URL to carry an error")
	}

	// Only the new URL and the broken one reached the network
	if got := fetches.Load(); got != 2 {
		t.Errorf("Expected 2 fetches, got %d", got)
	}

	var mediaCount int64
	db.Model(&gormModels.TourMedia{}).Where("tour_id = ?", tour.ID).Count(&mediaCount)
	if mediaCount != 2 {
		t.Errorf("Expected 2 media rows (seeded + imported), got %d", mediaCount)
	}
}
