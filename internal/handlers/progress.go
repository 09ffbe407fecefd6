package handlers

import (
	"net/http"

	"skillshare-backend/internal/middleware"
	"skillshare-backend/internal/models"
	"skillshare-backend/internal/monitoring"
	"skillshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ProgressHandler handles progress update HTTP requests
type ProgressHandler struct {
	progressService *services.ProgressService
}

// NewProgressHandler creates a new progress update handler
func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// ListUpdates handles GET /api/v1/progress
func (h *ProgressHandler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	updates, err := h.progressService.ListUpdates(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list progress updates", userID)
		return
	}
	respondJSON(w, http.StatusOK, updates)
}

// CreateUpdate handles POST /api/v1/progress
func (h *ProgressHandler) CreateUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.ProgressInput
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	update, err := h.progressService.CreateUpdate(ctx, userID, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create progress update", userID)
		return
	}
	monitoring.ProgressUpdatesCreated.Inc()

	respondJSON(w, http.StatusCreated, update)
}

// UpdateUpdate handles PUT /api/v1/progress/{id}
func (h *ProgressHandler) UpdateUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.ProgressInput
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	update, err := h.progressService.UpdateUpdate(ctx, chi.URLParam(r, "id"), userID, req)
	if err != nil {
		respondServiceError(w, err, "Failed to update progress update", userID)
		return
	}
	respondJSON(w, http.StatusOK, update)
}

// DeleteUpdate handles DELETE /api/v1/progress/{id}
func (h *ProgressHandler) DeleteUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.progressService.DeleteUpdate(ctx, chi.URLParam(r, "id"), userID); err != nil {
		respondServiceError(w, err, "Failed to delete progress update", userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
