package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"tourwise/backoffice/internal/db/repositories"
	"tourwise/backoffice/internal/models/dtos"
	gormModels "tourwise/backoffice/internal/models/gorm"
	"tourwise/backoffice/internal/services"
)

// SyncHandler exposes the tour-import endpoints
type SyncHandler struct {
	orchestrator *services.SyncOrchestrator
	history      *repositories.SyncHistoryRepo
	mediaImport  *services.MediaImportService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(
	orchestrator *services.SyncOrchestrator,
	history *repositories.SyncHistoryRepo,
	mediaImport *services.MediaImportService,
) *SyncHandler {
	return &SyncHandler{
		orchestrator: orchestrator,
		history:      history,
		mediaImport:  mediaImport,
	}
}

// TriggerSync handles POST /tour-import/sync
func (h *SyncHandler) TriggerSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, ok := decodeSyncOptions(w, r)
		if !ok {
			return
		}
		h.runSync(w, r, opts)
	}
}

// TriggerDryRun handles POST /tour-import/sync/dry-run
func (h *SyncHandler) TriggerDryRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, ok := decodeSyncOptions(w, r)
		if !ok {
			return
		}
		opts.DryRun = true
		h.runSync(w, r, opts)
	}
}

func (h *SyncHandler) runSync(w http.ResponseWriter, r *http.Request, opts dtos.SyncOptions) {
	result, err := h.orchestrator.RunSync(r.Context(), opts)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSyncInProgress), errors.Is(err, services.ErrLockNotAcquired):
			respondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrEnvNotPermitted):
			respondWithError(w, http.StatusForbidden, err.Error())
		default:
			log.Printf("[SyncHandler] sync run failed: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Sync run failed")
		}
		return
	}

	// A run that finished with errors is still a 200: the body's status
	// field distinguishes completed from partial from failed.
	respondWithSuccess(w, http.StatusOK, result)
}

// GetStatus handles GET /tour-import/sync/status
func (h *SyncHandler) GetStatus() http.HandlerFunc {
	type statusResponse struct {
		InProgress bool `json:"inProgress"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithSuccess(w, http.StatusOK, &statusResponse{
			InProgress: h.orchestrator.InProgress(),
		})
	}
}

// GetBrands handles GET /tour-import/brands
func (h *SyncHandler) GetBrands() http.HandlerFunc {
	type brandsResponse struct {
		Brands []string `json:"brands"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithSuccess(w, http.StatusOK, &brandsResponse{
			Brands: h.orchestrator.Brands(),
		})
	}
}

// GetHistory handles GET /tour-import/history
func (h *SyncHandler) GetHistory() http.HandlerFunc {
	type historyResponse struct {
		Runs []gormModels.SyncHistory `json:"runs"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		brand := r.URL.Query().Get("brand")
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		rows, err := h.history.ListRecent(r.Context(), brand, limit)
		if err != nil {
			log.Printf("[SyncHandler] history query failed: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to query sync history")
			return
		}

		respondWithSuccess(w, http.StatusOK, &historyResponse{Runs: rows})
	}
}

// ImportMedia handles POST /tour-import/media/import
func (h *SyncHandler) ImportMedia() http.HandlerFunc {
	type importRequest struct {
		TourID string   `json:"tourId"`
		URLs   []string `json:"urls"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req importRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.TourID == "" || len(req.URLs) == 0 {
			respondWithError(w, http.StatusBadRequest, "tourId and urls are required")
			return
		}

		report, err := h.mediaImport.ImportTourMedia(r.Context(), req.TourID, req.URLs)
		if err != nil {
			log.Printf("[SyncHandler] media import failed: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Media import failed")
			return
		}

		respondWithSuccess(w, http.StatusOK, report)
	}
}

func decodeSyncOptions(w http.ResponseWriter, r *http.Request) (dtos.SyncOptions, bool) {
	var opts dtos.SyncOptions
	if r.Body == nil {
		return opts, true
	}
	err := json.NewDecoder(r.Body).Decode(&opts)
	if err != nil && err != io.EOF {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return opts, false
	}
	return opts, true
}
