package services

import (
	"context"
	"time"

	"skillshare-backend/internal/models"
)

// The services depend on these narrow store contracts; the repository
// package provides the PostgreSQL implementations.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	OwnerID(ctx context.Context, postID string) (string, error)
	Update(ctx context.Context, postID string, content *string, media []*models.Media) error
	Delete(ctx context.Context, postID string) error
	ToggleLike(ctx context.Context, postID, userID string) (models.LikeResult, error)
}

type MediaStore interface {
	Create(ctx context.Context, media *models.Media) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
}

type ShareStore interface {
	Create(ctx context.Context, share *models.SharedPost) error
	GetByID(ctx context.Context, id string) (*models.SharedPost, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*models.SharedPost, error)
}

type FollowStore interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]models.UserSummary, error)
	ListFollowing(ctx context.Context, userID string) ([]models.UserSummary, error)
}

type PlanStore interface {
	Create(ctx context.Context, plan *models.LearningPlan) error
	GetByID(ctx context.Context, id string) (*models.LearningPlan, error)
	List(ctx context.Context) ([]*models.LearningPlan, error)
	ListByUser(ctx context.Context, userID string) ([]*models.LearningPlan, error)
	OwnerID(ctx context.Context, planID string) (string, error)
	Replace(ctx context.Context, plan *models.LearningPlan) error
	Delete(ctx context.Context, planID string) error
	Extend(ctx context.Context, planID string, endDate time.Time) error
	TaskOwnerID(ctx context.Context, taskID string) (string, error)
	CompleteTask(ctx context.Context, taskID string, at time.Time) (*models.PlanTask, error)
}

type ProgressStore interface {
	Create(ctx context.Context, update *models.ProgressUpdate) error
	GetByID(ctx context.Context, id string) (*models.ProgressUpdate, error)
	Update(ctx context.Context, id string, input models.ProgressInput) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.ProgressUpdate, error)
}

// Notifier delivers a message to a user without reporting failures
type Notifier interface {
	Notify(ctx context.Context, recipientID, message string)
}

// Storage stores an uploaded file and returns its URL
type Storage interface {
	Store(ctx context.Context, data []byte, contentType, originalName string) (string, error)
}
