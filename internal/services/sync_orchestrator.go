package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tourwise/backoffice/internal/common"
	"tourwise/backoffice/internal/constants"
	"tourwise/backoffice/internal/metrics"
	"tourwise/backoffice/internal/models/dtos"
)

// Run-level fatal errors. These abort RunSync with no partial result: the
// caller must treat them as "nothing happened".
var (
	ErrSyncInProgress  = errors.New(constants.MsgSyncInProgress)
	ErrLockNotAcquired = errors.New(constants.MsgLockNotAcquired)
	ErrEnvNotPermitted = errors.New(constants.MsgEnvNotPermitted)
)

// BrandWorker is the per-brand sync cycle the orchestrator drives
type BrandWorker interface {
	SyncBrand(ctx context.Context, runID, brand, currency string, opts dtos.SyncOptions) dtos.SyncMetrics
}

// SyncOrchestrator is the top-level entry point for a catalog sync run. It
// owns the in-process single-flight flag and the cross-process lock; brands
// are processed strictly sequentially to bound provider load and keep
// metrics ordering deterministic.
type SyncOrchestrator struct {
	worker BrandWorker
	lock   common.DistributedLock

	appEnv          string
	defaultBrands   []string
	defaultCurrency string
	runTimeout      time.Duration

	metrics *metrics.MetricsRegistry

	mu         sync.Mutex
	inProgress bool
}

// NewSyncOrchestrator creates an orchestrator configured from the environment
func NewSyncOrchestrator(worker BrandWorker, lock common.DistributedLock, metricsReg *metrics.MetricsRegistry) *SyncOrchestrator {
	brands := strings.Split(os.Getenv("SYNC_DEFAULT_BRANDS"), ",")
	cleaned := make([]string, 0, len(brands))
	for _, b := range brands {
		if b = strings.TrimSpace(b); b != "" {
			cleaned = append(cleaned, b)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{"adventures", "expeditions", "rivercruises"}
	}

	currency := os.Getenv("SYNC_DEFAULT_CURRENCY")
	if currency == "" {
		currency = constants.CurrencyCAD
	}

	timeoutMin := 30
	if v := os.Getenv("SYNC_RUN_TIMEOUT_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeoutMin = n
		}
	}

	return &SyncOrchestrator{
		worker:          worker,
		lock:            lock,
		appEnv:          os.Getenv("APP_ENV"),
		defaultBrands:   cleaned,
		defaultCurrency: currency,
		runTimeout:      time.Duration(timeoutMin) * time.Minute,
		metrics:         metricsReg,
	}
}

// Brands returns the configured default brand list
func (o *SyncOrchestrator) Brands() []string {
	out := make([]string, len(o.defaultBrands))
	copy(out, o.defaultBrands)
	return out
}

// InProgress reports whether a run is currently executing in this process
func (o *SyncOrchestrator) InProgress() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inProgress
}

// RunSync executes a full catalog sync run. Fails fast, with a distinct
// error, when invoked outside the primary environment without a bypass, when
// a run is already in progress in-process, or when the cross-process lock is
// held elsewhere.
func (o *SyncOrchestrator) RunSync(ctx context.Context, opts dtos.SyncOptions) (*dtos.SyncResult, error) {
	if err := o.checkEnvironment(opts); err != nil {
		return nil, err
	}

	if !o.tryBegin() {
		return nil, ErrSyncInProgress
	}
	defer o.end()

	// Non-blocking try-acquire; a held lock is an error, never a queue
	acquired, err := o.lock.TryAcquire(ctx, constants.LockKeyCatalogSync)
	if err != nil {
		return nil, fmt.Errorf("distributed lock acquire failed: %w", err)
	}
	if !acquired {
		return nil, ErrLockNotAcquired
	}
	defer func() {
		// Release must run on every exit path, including panics below
		if err := o.lock.Release(context.Background(), constants.LockKeyCatalogSync); err != nil {
			log.Printf("[CatalogSync] failed to release distributed lock: %v", err)
		}
	}()

	runCtx := ctx
	var cancel context.CancelFunc
	if o.runTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.runTimeout)
		defer cancel()
	}

	brands := opts.Brands
	if len(brands) == 0 {
		brands = o.Brands()
	}
	currency := opts.Currency
	if currency == "" {
		currency = o.defaultCurrency
	}

	result := &dtos.SyncResult{
		RunID:     uuid.NewString(),
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
	}

	log.Printf("[CatalogSync] run %s starting: brands=%v currency=%s dry_run=%v",
		result.RunID, brands, currency, opts.DryRun)

	for _, brand := range brands {
		if runCtx.Err() != nil {
			// Deadline hit: remaining brands are reported, not silently dropped
			m := dtos.SyncMetrics{Brand: brand}
			m.RecordError(brand, fmt.Errorf("run deadline exceeded before brand started"), constants.MaxRecordedSyncErrors)
			result.Brands = append(result.Brands, m)
			continue
		}

		// Metrics are appended whether or not the brand reported errors;
		// a brand's total failure never aborts the run.
		m := o.worker.SyncBrand(runCtx, result.RunID, brand, currency, opts)
		result.Brands = append(result.Brands, m)
	}

	result.FinishedAt = time.Now().UTC()
	result.DurationMs = result.FinishedAt.Sub(result.StartedAt).Milliseconds()
	result.Status = computeRunStatus(result.Brands)

	if o.metrics != nil {
		o.metrics.SyncRunsTotal.WithLabelValues(result.Status).Inc()
	}

	log.Printf("[CatalogSync] run %s finished: status=%s duration=%dms",
		result.RunID, result.Status, result.DurationMs)

	return result, nil
}

// checkEnvironment enforces the primary-environment guard
func (o *SyncOrchestrator) checkEnvironment(opts dtos.SyncOptions) error {
	if o.appEnv == "production" {
		return nil
	}
	if opts.BypassEnvGuard || os.Getenv("SYNC_ALLOW_NON_PRIMARY") == "true" {
		return nil
	}
	return ErrEnvNotPermitted
}

// tryBegin flips the single-flight flag; false when a run already holds it
func (o *SyncOrchestrator) tryBegin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inProgress {
		return false
	}
	o.inProgress = true
	return true
}

func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	o.inProgress = false
	o.mu.Unlock()
}

// computeRunStatus derives the run status from per-brand outcomes: failed
// when nothing synced anywhere and every brand errored, partial when errors
// exist alongside at least one synced tour, completed otherwise.
func computeRunStatus(brands []dtos.SyncMetrics) string {
	totalSynced := 0
	brandsWithErrors := 0
	anyErrors := false

	for _, m := range brands {
		totalSynced += m.ToursSynced()
		if len(m.Errors) > 0 {
			brandsWithErrors++
			anyErrors = true
		}
	}

	if totalSynced == 0 && len(brands) > 0 && brandsWithErrors == len(brands) {
		return constants.RunStatusFailed
	}
	if anyErrors {
		return constants.RunStatusPartial
	}
	return constants.RunStatusCompleted
}
