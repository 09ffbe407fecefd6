package handlers

import (
	"net/http"
	"strings"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/middleware"
	"skillshare-backend/internal/models"
	"skillshare-backend/internal/monitoring"
	"skillshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// PlanHandler handles learning plan HTTP requests
type PlanHandler struct {
	planService *services.PlanService
}

// NewPlanHandler creates a new learning plan handler
func NewPlanHandler(planService *services.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

type extendPlanRequest struct {
	EndDate string `json:"end_date"`
}

// ListPlans handles GET /api/v1/plans
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	plans, err := h.planService.ListPlans(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list learning plans", userID)
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

// ListMyPlans handles GET /api/v1/plans/me
func (h *PlanHandler) ListMyPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	plans, err := h.planService.ListMyPlans(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to list learning plans", userID)
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

// CreatePlan handles POST /api/v1/plans
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.PlanInput
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := h.planService.CreatePlan(ctx, userID, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create learning plan", userID)
		return
	}
	monitoring.PlansCreated.Inc()

	respondJSON(w, http.StatusCreated, plan)
}

// UpdatePlan handles PUT /api/v1/plans/{id}
func (h *PlanHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.PlanInput
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := h.planService.UpdatePlan(ctx, chi.URLParam(r, "id"), userID, req)
	if err != nil {
		respondServiceError(w, err, "Failed to update learning plan", userID)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// DeletePlan handles DELETE /api/v1/plans/{id}
func (h *PlanHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.planService.DeletePlan(ctx, chi.URLParam(r, "id"), userID); err != nil {
		respondServiceError(w, err, "Failed to delete learning plan", userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExtendPlan handles POST /api/v1/plans/{id}/extend
func (h *PlanHandler) ExtendPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req extendPlanRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	endDate, err := parseEndDate(req.EndDate)
	if err != nil {
		respondServiceError(w, err, "Invalid end date", userID)
		return
	}

	plan, err := h.planService.ExtendPlan(ctx, chi.URLParam(r, "id"), userID, endDate)
	if err != nil {
		respondServiceError(w, err, "Failed to extend learning plan", userID)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// CompleteTask handles POST /api/v1/plans/tasks/{taskId}/complete
func (h *PlanHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	task, err := h.planService.CompleteTask(ctx, chi.URLParam(r, "taskId"), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to complete task", userID)
		return
	}
	monitoring.TasksCompleted.Inc()

	respondJSON(w, http.StatusOK, task)
}

// endDateLayouts are tried in order; a bare date means midnight UTC
var endDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

func parseEndDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.New(apperr.InvalidArgument, "invalid date %q, use YYYY-MM-DD or YYYY-MM-DDThh:mm:ss", value)
}
