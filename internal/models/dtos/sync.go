package dtos

import "time"

// SyncOptions controls a catalog sync run
type SyncOptions struct {
	// Brands to sync; empty means the configured default brand list
	Brands []string `json:"brands,omitempty"`
	// Currency for pricing; empty means the configured default
	Currency string `json:"currency,omitempty"`
	// ForceFullSync skips the staleness sweep so nothing is deactivated
	ForceFullSync bool `json:"forceFullSync,omitempty"`
	// DryRun fetches catalogs and projects counts without writing
	DryRun bool `json:"dryRun,omitempty"`
	// BypassEnvGuard allows running outside the primary environment (testing)
	BypassEnvGuard bool `json:"bypassEnvGuard,omitempty"`
}

// SyncError records one isolated per-item failure
type SyncError struct {
	ItemKey   string    `json:"itemKey"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncMetrics aggregates one brand's sync outcome
type SyncMetrics struct {
	Brand                 string      `json:"brand"`
	ToursCreated          int         `json:"toursCreated"`
	ToursUpdated          int         `json:"toursUpdated"`
	ToursDeactivated      int         `json:"toursDeactivated"`
	DeparturesCreated     int         `json:"departuresCreated"`
	DeparturesUpdated     int         `json:"departuresUpdated"`
	DeparturesDeactivated int         `json:"departuresDeactivated"`
	MediaImported         int         `json:"mediaImported"`
	Errors                []SyncError `json:"errors,omitempty"`
	ErrorsTruncated       bool        `json:"errorsTruncated,omitempty"`
	DurationMs            int64       `json:"durationMs"`
}

// ToursSynced is the number of tours observed (created or updated) this run
func (m *SyncMetrics) ToursSynced() int {
	return m.ToursCreated + m.ToursUpdated
}

// RecordError appends a per-item error, capped to keep memory bounded on
// large catalogs.
func (m *SyncMetrics) RecordError(itemKey string, err error, cap int) {
	if len(m.Errors) >= cap {
		m.ErrorsTruncated = true
		return
	}
	m.Errors = append(m.Errors, SyncError{
		ItemKey:   itemKey,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	})
}

// SyncResult is the aggregate outcome of one full run across brands
type SyncResult struct {
	RunID      string        `json:"runId"`
	Status     string        `json:"status"` // completed | partial | failed
	DryRun     bool          `json:"dryRun"`
	Brands     []SyncMetrics `json:"brands"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	DurationMs int64         `json:"durationMs"`
}

// MediaImportItemResult is the positional result for one item of a batch
// media import. Exactly one of OK/Failed/Skipped buckets claims each item.
type MediaImportItemResult struct {
	URL     string `json:"url"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MediaImportReport summarizes a batch media import
type MediaImportReport struct {
	Successful int                     `json:"successful"`
	Failed     int                     `json:"failed"`
	Skipped    int                     `json:"skipped"`
	Items      []MediaImportItemResult `json:"items"`
}
