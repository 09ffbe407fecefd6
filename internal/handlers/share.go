package handlers

import (
	"net/http"

	"skillshare-backend/internal/middleware"
	"skillshare-backend/internal/monitoring"
	"skillshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ShareHandler handles shared post HTTP requests
type ShareHandler struct {
	shareService *services.ShareService
}

// NewShareHandler creates a new share handler
func NewShareHandler(shareService *services.ShareService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
	}
}

type shareRequest struct {
	ShareComment *string `json:"share_comment"`
}

// SharePost handles POST /api/v1/posts/{id}/share
func (h *ShareHandler) SharePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "id")

	var req shareRequest
	if err := decodeJSON(r, &req, true); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	share, err := h.shareService.SharePost(ctx, postID, userID, req.ShareComment)
	if err != nil {
		respondServiceError(w, err, "Failed to share post", userID)
		return
	}
	monitoring.SharesCreated.Inc()

	log.Info().
		Str("shared_post_id", share.ID).
		Str("post_id", postID).
		Str("user_id", userID).
		Msg("Post shared")

	respondJSON(w, http.StatusCreated, share)
}

// ListMyShares handles GET /api/v1/posts/shared/me
func (h *ShareHandler) ListMyShares(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	shares, err := h.shareService.ListMyShares(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list shares", userID)
		return
	}
	respondJSON(w, http.StatusOK, shares)
}

// ListUserShares handles GET /api/v1/posts/shared/user/{userId}
func (h *ShareHandler) ListUserShares(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	shares, err := h.shareService.ListShares(ctx, chi.URLParam(r, "userId"), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list shares", userID)
		return
	}
	respondJSON(w, http.StatusOK, shares)
}

// DeleteShare handles DELETE /api/v1/posts/shared/{id}
func (h *ShareHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.shareService.DeleteShare(ctx, chi.URLParam(r, "id"), userID); err != nil {
		respondServiceError(w, err, "Failed to delete share", userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
