package handlers

import (
	"context"
	"net/http"
	"strconv"

	"skillshare-backend/internal/middleware"
	"skillshare-backend/internal/notify"
)

const defaultNotificationLimit = 50

// NotificationReader lists a user's stored notifications, newest first
type NotificationReader interface {
	List(ctx context.Context, userID string, limit int) ([]notify.Notification, error)
}

// NotificationHandler handles notification inbox HTTP requests
type NotificationHandler struct {
	inbox NotificationReader
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(inbox NotificationReader) *NotificationHandler {
	return &NotificationHandler{
		inbox: inbox,
	}
}

// ListNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	limit := defaultNotificationLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	notifications, err := h.inbox.List(ctx, userID, limit)
	if err != nil {
		respondServiceError(w, err, "Failed to list notifications", userID)
		return
	}
	if notifications == nil {
		notifications = []notify.Notification{}
	}
	respondJSON(w, http.StatusOK, notifications)
}
