package handlers

import (
	"net/http"

	"skillshare-backend/internal/middleware"
	"skillshare-backend/internal/monitoring"
	"skillshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListComments handles GET /api/v1/posts/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comments, err := h.commentService.ListComments(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "Failed to list comments", "")
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// CreateComment handles POST /api/v1/posts/{id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req commentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.CreateComment(ctx, chi.URLParam(r, "id"), userID, req.Content)
	if err != nil {
		respondServiceError(w, err, "Failed to create comment", userID)
		return
	}
	monitoring.CommentsCreated.Inc()

	respondJSON(w, http.StatusCreated, comment)
}

// UpdateComment handles PUT /api/v1/posts/{id}/comments/{commentId}
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req commentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.UpdateComment(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "commentId"), userID, req.Content)
	if err != nil {
		respondServiceError(w, err, "Failed to update comment", userID)
		return
	}
	respondJSON(w, http.StatusOK, comment)
}

// DeleteComment handles DELETE /api/v1/posts/{id}/comments/{commentId}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.commentService.DeleteComment(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "commentId"), userID); err != nil {
		respondServiceError(w, err, "Failed to delete comment", userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
