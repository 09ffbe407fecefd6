package services

import (
	"context"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/authz"
	"skillshare-backend/internal/models"

	"github.com/google/uuid"
)

// ProgressService handles progress updates
type ProgressService struct {
	progressRepo ProgressStore
	userRepo     UserStore
}

// NewProgressService creates a new progress update service
func NewProgressService(progressRepo ProgressStore, userRepo UserStore) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		userRepo:     userRepo,
	}
}

// ListUpdates returns every progress update, newest first
func (s *ProgressService) ListUpdates(ctx context.Context, viewerID string) ([]*models.ProgressUpdate, error) {
	if err := authz.RequireAuthenticated(viewerID); err != nil {
		return nil, err
	}
	updates, err := s.progressRepo.List(ctx)
	if err != nil {
		return nil, apperr.Ensure(err, "list progress updates")
	}
	return updates, nil
}

// CreateUpdate records a progress update for authorID
func (s *ProgressService) CreateUpdate(ctx context.Context, authorID string, input models.ProgressInput) (*models.ProgressUpdate, error) {
	if err := authz.RequireAuthenticated(authorID); err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, apperr.Ensure(err, "create progress update")
	}

	update := &models.ProgressUpdate{
		ID:         uuid.New().String(),
		UserID:     author.ID,
		AuthorName: author.Name,
		Content:    input.Content,
		Completed:  input.Completed,
		NewSkills:  input.NewSkills,
		CreatedAt:  time.Now(),
	}
	if err := s.progressRepo.Create(ctx, update); err != nil {
		return nil, apperr.Ensure(err, "create progress update")
	}
	return update, nil
}

// UpdateUpdate rewrites a progress update; only its author may do so
func (s *ProgressService) UpdateUpdate(ctx context.Context, updateID, requesterID string, input models.ProgressInput) (*models.ProgressUpdate, error) {
	update, err := s.requireAuthor(ctx, updateID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.progressRepo.Update(ctx, updateID, input); err != nil {
		return nil, apperr.Ensure(err, "update progress update")
	}
	update.Content = input.Content
	update.Completed = input.Completed
	update.NewSkills = input.NewSkills
	return update, nil
}

// DeleteUpdate removes a progress update; only its author may do so
func (s *ProgressService) DeleteUpdate(ctx context.Context, updateID, requesterID string) error {
	if _, err := s.requireAuthor(ctx, updateID, requesterID); err != nil {
		return err
	}
	if err := s.progressRepo.Delete(ctx, updateID); err != nil {
		return apperr.Ensure(err, "delete progress update")
	}
	return nil
}

func (s *ProgressService) requireAuthor(ctx context.Context, updateID, requesterID string) (*models.ProgressUpdate, error) {
	if err := authz.RequireAuthenticated(requesterID); err != nil {
		return nil, err
	}
	update, err := s.progressRepo.GetByID(ctx, updateID)
	if err != nil {
		return nil, apperr.Ensure(err, "load progress update")
	}
	if err := authz.RequireOwner(requesterID, update.UserID); err != nil {
		return nil, err
	}
	return update, nil
}
