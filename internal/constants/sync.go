package constants

// Sync run statuses reported in SyncResult
const (
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// Per-brand sync history statuses
const (
	HistoryStatusRunning   = "running"
	HistoryStatusCompleted = "completed"
	HistoryStatusFailed    = "failed"
)

// Departure statuses as delivered by the provider
const (
	DepartureStatusAvailable = "AVAILABLE"
	DepartureStatusSoldOut   = "SOLD_OUT"
	DepartureStatusCancelled = "CANCELLED"
)

// Supported pricing currencies
const (
	CurrencyCAD = "CAD"
	CurrencyUSD = "USD"
)

// MaxRecordedSyncErrors caps the per-brand error list to bound memory on
// catalogs with tens of thousands of records.
const MaxRecordedSyncErrors = 100

// LockKeyCatalogSync is the cross-process advisory lock name for the sync run.
const LockKeyCatalogSync = "catalog_sync"
