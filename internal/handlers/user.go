package handlers

import (
	"net/http"

	"skillshare-backend/internal/middleware"
	"skillshare-backend/internal/monitoring"
	"skillshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService    *services.UserService
	maxUploadBytes int64
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, maxUploadBytes int64) *UserHandler {
	return &UserHandler{
		userService:    userService,
		maxUploadBytes: maxUploadBytes,
	}
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type updateProfileRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

type pushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.Register(ctx, req.Email, req.Name)
	if err != nil {
		respondServiceError(w, err, "Failed to register user", "")
		return
	}
	monitoring.UsersRegistered.Inc()

	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("User registered")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// GetCurrentUser handles GET /api/v1/users/current
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get current user", userID)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetUser handles GET /api/v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.GetUser(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "Failed to get user", userID)
		return
	}
	respondJSON(w, http.StatusOK, user.Summary())
}

// UpdateProfile handles PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req updateProfileRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(ctx, userID, req.Name, req.Bio)
	if err != nil {
		respondServiceError(w, err, "Failed to update profile", userID)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateProfilePhoto handles POST /api/v1/users/me/photo
func (h *UserHandler) UpdateProfilePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	files, err := readMediaFiles(r.MultipartForm, "photo")
	if err != nil || len(files) == 0 {
		respondError(w, "photo file is required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfilePhoto(ctx, userID, files[0])
	if err != nil {
		respondServiceError(w, err, "Failed to update profile photo", userID)
		return
	}

	log.Info().Str("user_id", userID).Msg("Profile photo updated")
	respondJSON(w, http.StatusOK, user)
}

// UpdatePushToken handles PUT /api/v1/users/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req pushTokenRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(ctx, userID, req.PushToken); err != nil {
		respondServiceError(w, err, "Failed to update push token", userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
