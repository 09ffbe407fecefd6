package handlers

import (
	"net/http"

	"skillshare-backend/internal/middleware"
	"skillshare-backend/internal/monitoring"
	"skillshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FollowHandler handles follow graph HTTP requests
type FollowHandler struct {
	followService *services.FollowService
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(followService *services.FollowService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
	}
}

// Follow handles POST /api/v1/users/{id}/follow/{followId}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	followerID := chi.URLParam(r, "id")
	followeeID := chi.URLParam(r, "followId")

	if err := h.followService.Follow(ctx, userID, followerID, followeeID); err != nil {
		respondServiceError(w, err, "Failed to follow user", userID)
		return
	}
	monitoring.FollowsCreated.Inc()

	log.Info().
		Str("follower_id", followerID).
		Str("followee_id", followeeID).
		Msg("User followed")

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow handles DELETE /api/v1/users/{id}/follow/{followId}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	followerID := chi.URLParam(r, "id")
	followeeID := chi.URLParam(r, "followId")

	if err := h.followService.Unfollow(ctx, userID, followerID, followeeID); err != nil {
		respondServiceError(w, err, "Failed to unfollow user", userID)
		return
	}

	log.Info().
		Str("follower_id", followerID).
		Str("followee_id", followeeID).
		Msg("User unfollowed")

	w.WriteHeader(http.StatusNoContent)
}

// IsFollowing handles GET /api/v1/users/{id}/following/{followId}
func (h *FollowHandler) IsFollowing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	following, err := h.followService.IsFollowing(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "followId"), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to check follow", userID)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"following": following})
}

// ListFollowers handles GET /api/v1/users/{id}/followers
func (h *FollowHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	users, err := h.followService.ListFollowers(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "Failed to list followers", userID)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// ListFollowing handles GET /api/v1/users/{id}/following
func (h *FollowHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	users, err := h.followService.ListFollowing(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "Failed to list following", userID)
		return
	}
	respondJSON(w, http.StatusOK, users)
}
