package services

import (
	"context"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/authz"
	"skillshare-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PlanService handles learning plans and their tasks. Only a plan's owner
// may change it or its tasks.
type PlanService struct {
	planRepo PlanStore
	userRepo UserStore
}

// NewPlanService creates a new learning plan service
func NewPlanService(planRepo PlanStore, userRepo UserStore) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		userRepo: userRepo,
	}
}

// ListPlans returns every plan, newest first
func (s *PlanService) ListPlans(ctx context.Context, viewerID string) ([]*models.LearningPlan, error) {
	if err := authz.RequireAuthenticated(viewerID); err != nil {
		return nil, err
	}
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, apperr.Ensure(err, "list learning plans")
	}
	return plans, nil
}

// ListMyPlans returns the viewer's own plans, newest first
func (s *PlanService) ListMyPlans(ctx context.Context, viewerID string) ([]*models.LearningPlan, error) {
	if err := authz.RequireAuthenticated(viewerID); err != nil {
		return nil, err
	}
	plans, err := s.planRepo.ListByUser(ctx, viewerID)
	if err != nil {
		return nil, apperr.Ensure(err, "list learning plans")
	}
	return plans, nil
}

// CreatePlan creates a plan with its tasks for ownerID
func (s *PlanService) CreatePlan(ctx context.Context, ownerID string, input models.PlanInput) (*models.LearningPlan, error) {
	if err := authz.RequireAuthenticated(ownerID); err != nil {
		return nil, err
	}
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, apperr.Ensure(err, "create learning plan")
	}

	now := time.Now()
	plan := &models.LearningPlan{
		ID:         uuid.New().String(),
		UserID:     owner.ID,
		AuthorName: owner.Name,
		CreatedAt:  now,
	}
	applyPlanInput(plan, input, nil, now)

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, apperr.Ensure(err, "create learning plan")
	}

	log.Info().
		Str("plan_id", plan.ID).
		Str("user_id", ownerID).
		Int("tasks", len(plan.Tasks)).
		Msg("Learning plan created")

	return plan, nil
}

// UpdatePlan replaces a plan's fields and task list. Submitted tasks that
// carry the ID of an existing task keep that ID and, while still completed,
// their completion time.
func (s *PlanService) UpdatePlan(ctx context.Context, planID, requesterID string, input models.PlanInput) (*models.LearningPlan, error) {
	if err := authz.RequireAuthenticated(requesterID); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, apperr.Ensure(err, "update learning plan")
	}
	if err := authz.RequireOwner(requesterID, plan.UserID); err != nil {
		return nil, err
	}

	existing := make(map[string]*models.PlanTask, len(plan.Tasks))
	for _, t := range plan.Tasks {
		existing[t.ID] = t
	}
	applyPlanInput(plan, input, existing, time.Now())

	err = retryOnConflict(ctx, "update learning plan", func() error {
		return s.planRepo.Replace(ctx, plan)
	})
	if err != nil {
		return nil, apperr.Ensure(err, "update learning plan")
	}
	return plan, nil
}

// DeletePlan removes a plan and its tasks
func (s *PlanService) DeletePlan(ctx context.Context, planID, requesterID string) error {
	if err := s.requirePlanOwner(ctx, planID, requesterID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return apperr.Ensure(err, "delete learning plan")
	}
	return nil
}

// ExtendPlan moves the plan's end date later and flags it as extended
func (s *PlanService) ExtendPlan(ctx context.Context, planID, requesterID string, endDate time.Time) (*models.LearningPlan, error) {
	if err := authz.RequireAuthenticated(requesterID); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, apperr.Ensure(err, "extend learning plan")
	}
	if err := authz.RequireOwner(requesterID, plan.UserID); err != nil {
		return nil, err
	}
	if plan.EndDate != nil && !endDate.After(*plan.EndDate) {
		return nil, apperr.New(apperr.InvalidArgument, "new end date must be after %s", plan.EndDate.Format(time.DateOnly))
	}

	if err := s.planRepo.Extend(ctx, planID, endDate); err != nil {
		return nil, apperr.Ensure(err, "extend learning plan")
	}
	plan.EndDate = &endDate
	plan.Extended = true
	return plan, nil
}

// CompleteTask marks a task of one of the requester's plans as done
func (s *PlanService) CompleteTask(ctx context.Context, taskID, requesterID string) (*models.PlanTask, error) {
	if err := authz.RequireAuthenticated(requesterID); err != nil {
		return nil, err
	}
	ownerID, err := s.planRepo.TaskOwnerID(ctx, taskID)
	if err != nil {
		return nil, apperr.Ensure(err, "complete task")
	}
	if err := authz.RequireOwner(requesterID, ownerID); err != nil {
		return nil, err
	}

	task, err := s.planRepo.CompleteTask(ctx, taskID, time.Now())
	if err != nil {
		return nil, apperr.Ensure(err, "complete task")
	}
	return task, nil
}

func (s *PlanService) requirePlanOwner(ctx context.Context, planID, requesterID string) error {
	if err := authz.RequireAuthenticated(requesterID); err != nil {
		return err
	}
	ownerID, err := s.planRepo.OwnerID(ctx, planID)
	if err != nil {
		return apperr.Ensure(err, "load learning plan")
	}
	return authz.RequireOwner(requesterID, ownerID)
}

// applyPlanInput copies input onto plan and rebuilds its task list in the
// submitted order.
func applyPlanInput(plan *models.LearningPlan, input models.PlanInput, existing map[string]*models.PlanTask, now time.Time) {
	plan.Topic = input.Topic
	plan.Resources = input.Resources
	plan.Timeline = input.Timeline
	plan.StartDate = input.StartDate
	plan.EndDate = input.EndDate

	plan.Tasks = make([]*models.PlanTask, 0, len(input.Tasks))
	for i, in := range input.Tasks {
		task := &models.PlanTask{
			ID:          uuid.New().String(),
			PlanID:      plan.ID,
			Description: in.Description,
			Completed:   in.Completed,
			DueDate:     in.DueDate,
			Position:    i,
		}
		prev, known := existing[in.ID]
		if known {
			task.ID = prev.ID
		}
		if task.Completed {
			completedAt := now
			if known && prev.CompletedAt != nil {
				completedAt = *prev.CompletedAt
			}
			task.CompletedAt = &completedAt
		}
		plan.Tasks = append(plan.Tasks, task)
	}
}
