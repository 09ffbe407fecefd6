package handlers

import (
	"net/http"

	"skillshare-backend/internal/middleware"
	"skillshare-backend/internal/models"
	"skillshare-backend/internal/monitoring"
	"skillshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postService    *services.PostService
	maxUploadBytes int64
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *services.PostService, maxUploadBytes int64) *PostHandler {
	return &PostHandler{
		postService:    postService,
		maxUploadBytes: maxUploadBytes,
	}
}

type postRequest struct {
	Content *string `json:"content"`
}

// postInput is the content and media sent either as multipart form
// (field "content", files "files") or as a JSON body without media.
type postInput struct {
	content *string
	files   []models.MediaFile
}

func (h *PostHandler) readInput(w http.ResponseWriter, r *http.Request) (postInput, bool) {
	var in postInput
	if !isMultipart(r) {
		var req postRequest
		if err := decodeJSON(r, &req, false); err != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return in, false
		}
		in.content = req.Content
		return in, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return in, false
	}
	if content, ok := formValue(r.MultipartForm, "content"); ok {
		in.content = &content
	}
	files, err := readMediaFiles(r.MultipartForm, "files")
	if err != nil {
		respondError(w, "Failed to read uploaded files", http.StatusBadRequest)
		return in, false
	}
	in.files = files
	return in, true
}

// ListPosts handles GET /api/v1/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	posts, err := h.postService.ListPosts(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list posts", userID)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// ListUserPosts handles GET /api/v1/users/{id}/posts
func (h *PostHandler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	posts, err := h.postService.ListUserPosts(ctx, chi.URLParam(r, "id"), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list user posts", userID)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// GetPost handles GET /api/v1/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	post, err := h.postService.GetPost(ctx, chi.URLParam(r, "id"), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get post", userID)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// CreatePost handles POST /api/v1/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	in, ok := h.readInput(w, r)
	if !ok {
		return
	}
	var content string
	if in.content != nil {
		content = *in.content
	}

	result, err := h.postService.CreatePost(ctx, userID, content, in.files)
	if err != nil {
		respondServiceError(w, err, "Failed to create post", userID)
		return
	}
	monitoring.PostsCreated.Inc()
	for _, m := range result.Media {
		if m.Error != "" {
			monitoring.MediaUploadFailures.Inc()
		}
	}

	respondJSON(w, http.StatusCreated, result)
}

// UpdatePost handles PUT /api/v1/posts/{id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "id")

	in, ok := h.readInput(w, r)
	if !ok {
		return
	}

	post, err := h.postService.UpdatePost(ctx, postID, userID, in.content, in.files)
	if err != nil {
		respondServiceError(w, err, "Failed to update post", userID)
		return
	}

	log.Info().Str("post_id", postID).Str("user_id", userID).Msg("Post updated")
	respondJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/v1/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "id")

	if err := h.postService.DeletePost(ctx, postID, userID); err != nil {
		respondServiceError(w, err, "Failed to delete post", userID)
		return
	}

	log.Info().Str("post_id", postID).Str("user_id", userID).Msg("Post deleted")
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike handles POST /api/v1/posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	result, err := h.postService.ToggleLike(ctx, chi.URLParam(r, "id"), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to toggle like", userID)
		return
	}

	action := "unlike"
	if result.Liked {
		action = "like"
	}
	monitoring.LikesToggled.WithLabelValues(action).Inc()

	respondJSON(w, http.StatusOK, result)
}
