package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tourwise/backoffice/internal/db/repositories"
	"tourwise/backoffice/internal/metrics"
	"tourwise/backoffice/internal/models/dtos"
	gormModels "tourwise/backoffice/internal/models/gorm"
)

// ItemResult is the positional outcome for one batch item. results[i] always
// corresponds to items[i], regardless of completion order.
type ItemResult[R any] struct {
	Value R
	Err   error
}

// ImportAll runs worker over items with bounded parallelism: a shared cursor
// and a fixed pool of min(concurrency, len(items)) goroutines, each looping
// claim-next-index / run / store-at-index. A failed item becomes a per-item
// error result; it never cancels sibling work.
func ImportAll[T any, R any](
	ctx context.Context,
	items []T,
	worker func(ctx context.Context, item T) (R, error),
	concurrency int,
) []ItemResult[R] {
	results := make([]ItemResult[R], len(items))
	if len(items) == 0 {
		return results
	}

	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	var cursor atomic.Int64
	g := new(errgroup.Group)

	for w := 0; w < concurrency; w++ {
		g.Go(func() error {
			for {
				idx := int(cursor.Add(1)) - 1
				if idx >= len(items) {
					return nil
				}
				value, err := worker(ctx, items[idx])
				results[idx] = ItemResult[R]{Value: value, Err: err}
			}
		})
	}

	// Workers never return errors; Wait is only the join point
	_ = g.Wait()
	return results
}

// MediaImportService ingests batches of external media URLs for a tour,
// sharing the sync engine's error-isolation philosophy: every item is
// accounted for in exactly one of successful/failed/skipped.
type MediaImportService struct {
	tours       *repositories.TourRepo
	client      *http.Client
	metrics     *metrics.MetricsRegistry
	concurrency int
}

// NewMediaImportService creates a media import service
func NewMediaImportService(tours *repositories.TourRepo, metricsReg *metrics.MetricsRegistry) *MediaImportService {
	return &MediaImportService{
		tours: tours,
		client: &http.Client{
			// Per-item timeout lives here, on the network call
			Timeout: 30 * time.Second,
		},
		metrics:     metricsReg,
		concurrency: 4,
	}
}

// ImportTourMedia imports the given URLs for a tour. Duplicates within the
// batch and URLs already present in the store are skipped before any network
// fetch is dispatched.
func (s *MediaImportService) ImportTourMedia(ctx context.Context, tourID string, urls []string) (*dtos.MediaImportReport, error) {
	report := &dtos.MediaImportReport{
		Items: make([]dtos.MediaImportItemResult, len(urls)),
	}

	// First occurrence of each URL within the batch wins
	firstIndex := make(map[string]int, len(urls))
	unique := make([]string, 0, len(urls))
	for i, u := range urls {
		if _, dup := firstIndex[u]; dup {
			continue
		}
		firstIndex[u] = i
		unique = append(unique, u)
	}

	existing, err := s.tours.ExistingMediaURLs(ctx, tourID, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing media: %w", err)
	}

	toFetch := make([]string, 0, len(unique))
	for _, u := range unique {
		if !existing[u] {
			toFetch = append(toFetch, u)
		}
	}

	results := ImportAll(ctx, toFetch, func(ctx context.Context, url string) (string, error) {
		return url, s.fetchAndStore(ctx, tourID, url)
	}, s.concurrency)

	outcomeByURL := make(map[string]error, len(toFetch))
	for i, r := range results {
		outcomeByURL[toFetch[i]] = r.Err
	}

	for i, u := range urls {
		item := dtos.MediaImportItemResult{URL: u}

		switch {
		case firstIndex[u] != i || existing[u]:
			item.Skipped = true
			report.Skipped++
		case outcomeByURL[u] != nil:
			item.Error = outcomeByURL[u].Error()
			report.Failed++
		default:
			item.OK = true
			report.Successful++
		}

		report.Items[i] = item
	}

	if s.metrics != nil {
		s.metrics.MediaImportedTotal.WithLabelValues("success").Add(float64(report.Successful))
		s.metrics.MediaImportedTotal.WithLabelValues("failed").Add(float64(report.Failed))
		s.metrics.MediaImportedTotal.WithLabelValues("skipped").Add(float64(report.Skipped))
	}

	return report, nil
}

// fetchAndStore verifies the URL is reachable, then records the media row
func (s *MediaImportService) fetchAndStore(ctx context.Context, tourID, url string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("invalid media URL: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("media fetch failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain a little so keep-alive connections can be reused
	_, _ = io.CopyN(io.Discard, resp.Body, 512)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media fetch returned HTTP %d", resp.StatusCode)
	}

	return s.tours.AddMedia(ctx, &gormModels.TourMedia{
		TourID:       tourID,
		URL:          url,
		Kind:         "image",
		FromProvider: true,
	})
}
