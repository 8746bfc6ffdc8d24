package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tourwise/backoffice/internal/models/dtos"
)

// Mock BrandWorker
type mockBrandWorker struct {
	syncBrandFunc func(ctx context.Context, runID, brand, currency string, opts dtos.SyncOptions) dtos.SyncMetrics
}

func (m *mockBrandWorker) SyncBrand(ctx context.Context, runID, brand, currency string, opts dtos.SyncOptions) dtos.SyncMetrics {
	return m.syncBrandFunc(ctx, runID, brand, currency, opts)
}

// Fake DistributedLock
type fakeLock struct {
	mu       sync.Mutex
	held     bool
	denyAll  bool
	acquires int
	releases int
}

func (l *fakeLock) TryAcquire(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.denyAll || l.held {
		return false, nil
	}
	l.held = true
	l.acquires++
	return true, nil
}

func (l *fakeLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.releases++
	return nil
}

func okWorker() *mockBrandWorker {
	return &mockBrandWorker{
		syncBrandFunc: func(ctx context.Context, runID, brand, currency string, opts dtos.SyncOptions) dtos.SyncMetrics {
			return dtos.SyncMetrics{Brand: brand, ToursCreated: 2}
		},
	}
}

func TestSyncOrchestrator_RunSync_Completed(t *testing.T) {
	lock := &fakeLock{}
	o := NewSyncOrchestrator(okWorker(), lock, nil)

	result, err := o.RunSync(context.Background(), dtos.SyncOptions{
		Brands:         []string{"adventures", "expeditions"},
		BypassEnvGuard: true,
	})
	if err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}

	if result.Status != "completed" {
		t.Errorf("Expected completed, got %s", result.Status)
	}
	if len(result.Brands) != 2 {
		t.Fatalf("Expected 2 brand results, got %d", len(result.Brands))
	}
	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
	if lock.releases != 1 {
		t.Errorf("Expected lock released once, released %d times", lock.releases)
	}
}

func TestSyncOrchestrator_RunSync_EnvGuard(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SYNC_ALLOW_NON_PRIMARY", "")

	o := NewSyncOrchestrator(okWorker(), &fakeLock{}, nil)

	_, err := o.RunSync(context.Background(), dtos.SyncOptions{Brands: []string{"adventures"}})
	if !errors.Is(err, ErrEnvNotPermitted) {
		t.Fatalf("Expected ErrEnvNotPermitted, got %v", err)
	}
}

func TestSyncOrchestrator_RunSync_EnvGuardProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	o := NewSyncOrchestrator(okWorker(), &fakeLock{}, nil)

	if _, err := o.RunSync(context.Background(), dtos.SyncOptions{Brands: []string{"adventures"}}); err != nil {
		t.Fatalf("Expected run permitted in production, got %v", err)
	}
}

func TestSyncOrchestrator_RunSync_LockHeldElsewhere(t *testing.T) {
	lock := &fakeLock{denyAll: true}
	o := NewSyncOrchestrator(okWorker(), lock, nil)

	_, err := o.RunSync(context.Background(), dtos.SyncOptions{
		Brands:         []string{"adventures"},
		BypassEnvGuard: true,
	})
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("Expected ErrLockNotAcquired, got %v", err)
	}
}

func TestSyncOrchestrator_RunSync_SingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	worker := &mockBrandWorker{
		syncBrandFunc: func(ctx context.Context, runID, brand, currency string, opts dtos.SyncOptions) dtos.SyncMetrics {
			close(started)
			<-release
			return dtos.SyncMetrics{Brand: brand, ToursCreated: 1}
		},
	}
	o := NewSyncOrchestrator(worker, &fakeLock{}, nil)

	opts := dtos.SyncOptions{Brands: []string{"adventures"}, BypassEnvGuard: true}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := o.RunSync(context.Background(), opts); err != nil {
			t.Errorf("First run failed: %v", err)
		}
	}()

	<-started
	if !o.InProgress() {
		t.Error("Expected InProgress while the run executes")
	}

	_, err := o.RunSync(context.Background(), opts)
	if !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("Expected ErrSyncInProgress for concurrent run, got %v", err)
	}

	close(release)
	wg.Wait()

	if o.InProgress() {
		t.Error("Expected InProgress cleared after the run")
	}
}

func TestSyncOrchestrator_RunSync_BrandFailureNeverAbortsRun(t *testing.T) {
	worker := &mockBrandWorker{
		syncBrandFunc: func(ctx context.Context, runID, brand, currency string, opts dtos.SyncOptions) dtos.SyncMetrics {
			m := dtos.SyncMetrics{Brand: brand}
			if brand == "expeditions" {
				m.RecordError(brand, errors.New("catalog fetch failed"), 100)
				return m
			}
			m.ToursCreated = 3
			return m
		},
	}
	o := NewSyncOrchestrator(worker, &fakeLock{}, nil)

	result, err := o.RunSync(context.Background(), dtos.SyncOptions{
		Brands:         []string{"adventures", "expeditions", "rivercruises"},
		BypassEnvGuard: true,
	})
	if err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}

	if len(result.Brands) != 3 {
		t.Fatalf("Expected all 3 brands reported, got %d", len(result.Brands))
	}
	if result.Status != "partial" {
		t.Errorf("Expected partial, got %s", result.Status)
	}
}

func TestComputeRunStatus(t *testing.T) {
	errored := func(brand string) dtos.SyncMetrics {
		m := dtos.SyncMetrics{Brand: brand}
		m.RecordError(brand, errors.New("boom"), 100)
		return m
	}

	tests := []struct {
		name   string
		brands []dtos.SyncMetrics
		want   string
	}{
		{
			name:   "all clean",
			brands: []dtos.SyncMetrics{{Brand: "a", ToursCreated: 1}, {Brand: "b", ToursUpdated: 2}},
			want:   "completed",
		},
		{
			name:   "errors with progress",
			brands: []dtos.SyncMetrics{{Brand: "a", ToursCreated: 1}, errored("b")},
			want:   "partial",
		},
		{
			name:   "every brand failed with nothing synced",
			brands: []dtos.SyncMetrics{errored("a"), errored("b")},
			want:   "failed",
		},
		{
			name:   "nothing synced but not all errored",
			brands: []dtos.SyncMetrics{{Brand: "a"}, errored("b")},
			want:   "partial",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeRunStatus(tt.brands); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
