package services

import (
	"context"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/authz"
	"skillshare-backend/internal/feed"
	"skillshare-backend/internal/models"

	"github.com/google/uuid"
)

// CommentService handles comments under posts
type CommentService struct {
	commentRepo CommentStore
	postRepo    PostStore
	userRepo    UserStore
	notifier    Notifier
}

// NewCommentService creates a new comment service
func NewCommentService(commentRepo CommentStore, postRepo PostStore, userRepo UserStore, notifier Notifier) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// CreateComment adds a comment to a post and notifies the post's author
func (s *CommentService) CreateComment(ctx context.Context, postID, authorID, content string) (*models.Comment, error) {
	if err := authz.RequireAuthenticated(authorID); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, apperr.Ensure(err, "create comment")
	}
	if _, err := s.postRepo.OwnerID(ctx, postID); err != nil {
		return nil, apperr.Ensure(err, "create comment")
	}

	comment := &models.Comment{
		ID:         uuid.New().String(),
		PostID:     postID,
		UserID:     author.ID,
		AuthorName: author.Name,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, apperr.Ensure(err, "create comment")
	}

	notifyOwner(ctx, s.postRepo, s.userRepo, s.notifier, postID, authorID, "%s commented on your post!")
	return comment, nil
}

// UpdateComment changes a comment's text; only its author may do so
func (s *CommentService) UpdateComment(ctx context.Context, postID, commentID, requesterID, content string) (*models.Comment, error) {
	if err := authz.RequireAuthenticated(requesterID); err != nil {
		return nil, err
	}

	comment, err := s.getPostComment(ctx, postID, commentID)
	if err != nil {
		return nil, apperr.Ensure(err, "update comment")
	}
	if err := authz.RequireOwner(requesterID, comment.UserID); err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateContent(ctx, commentID, content); err != nil {
		return nil, apperr.Ensure(err, "update comment")
	}
	comment.Content = content
	return comment, nil
}

// DeleteComment removes a comment; its author or the post's author may do so
func (s *CommentService) DeleteComment(ctx context.Context, postID, commentID, requesterID string) error {
	if err := authz.RequireAuthenticated(requesterID); err != nil {
		return err
	}

	comment, err := s.getPostComment(ctx, postID, commentID)
	if err != nil {
		return apperr.Ensure(err, "delete comment")
	}
	postOwnerID, err := s.postRepo.OwnerID(ctx, comment.PostID)
	if err != nil {
		return apperr.Ensure(err, "delete comment")
	}
	if err := authz.RequireAnyOwner(requesterID, comment.UserID, postOwnerID); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return apperr.Ensure(err, "delete comment")
	}
	return nil
}

// ListComments returns a post's comments, oldest first
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	if _, err := s.postRepo.OwnerID(ctx, postID); err != nil {
		return nil, apperr.Ensure(err, "list comments")
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperr.Ensure(err, "list comments")
	}
	return feed.ProjectComments(comments), nil
}

// getPostComment loads a comment addressed through its post. A comment that
// belongs to another post is reported as not found.
func (s *CommentService) getPostComment(ctx context.Context, postID, commentID string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, apperr.New(apperr.NotFound, "comment %s not found on post %s", commentID, postID)
	}
	return comment, nil
}
