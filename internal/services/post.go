package services

import (
	"context"
	"fmt"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/authz"
	"skillshare-backend/internal/feed"
	"skillshare-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PostService handles the post aggregate: posts, their media and likes
type PostService struct {
	postRepo     PostStore
	userRepo     UserStore
	mediaService *MediaService
	notifier     Notifier
}

// NewPostService creates a new post service
func NewPostService(postRepo PostStore, userRepo UserStore, mediaService *MediaService, notifier Notifier) *PostService {
	return &PostService{
		postRepo:     postRepo,
		userRepo:     userRepo,
		mediaService: mediaService,
		notifier:     notifier,
	}
}

// CreatePost persists a post and attaches its media best-effort
func (s *PostService) CreatePost(ctx context.Context, authorID, content string, files []models.MediaFile) (*models.CreatePostResult, error) {
	if err := authz.RequireAuthenticated(authorID); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, apperr.Ensure(err, "create post")
	}

	post := &models.Post{
		ID:         uuid.New().String(),
		UserID:     author.ID,
		AuthorName: author.Name,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, apperr.Ensure(err, "create post")
	}

	attached, results := s.mediaService.Attach(ctx, post.ID, files)
	post.Media = attached

	log.Info().
		Str("post_id", post.ID).
		Str("user_id", authorID).
		Int("media", len(attached)).
		Int("media_failed", len(results)-len(attached)).
		Msg("Post created")

	return &models.CreatePostResult{
		Post:  feed.Project(post, authorID),
		Media: results,
	}, nil
}

// UpdatePost replaces the content when given and the whole media set when
// new files are given. Only the author may update.
func (s *PostService) UpdatePost(ctx context.Context, postID, requesterID string, content *string, files []models.MediaFile) (*models.PostView, error) {
	if err := s.requirePostOwner(ctx, postID, requesterID); err != nil {
		return nil, err
	}

	var media []*models.Media
	if hasFiles(files) {
		uploaded, err := s.mediaService.UploadAll(ctx, postID, files)
		if err != nil {
			return nil, fmt.Errorf("update post: %w", err)
		}
		media = uploaded
	}

	err := retryOnConflict(ctx, "update post", func() error {
		return s.postRepo.Update(ctx, postID, content, media)
	})
	if err != nil {
		if len(media) > 0 {
			logOrphanedMedia(postID, media, err)
		}
		return nil, apperr.Ensure(err, "update post")
	}

	return s.GetPost(ctx, postID, requesterID)
}

// DeletePost removes a post with its media, comments, likes and shares
func (s *PostService) DeletePost(ctx context.Context, postID, requesterID string) error {
	if err := s.requirePostOwner(ctx, postID, requesterID); err != nil {
		return err
	}
	err := retryOnConflict(ctx, "delete post", func() error {
		return s.postRepo.Delete(ctx, postID)
	})
	if err != nil {
		return apperr.Ensure(err, "delete post")
	}
	return nil
}

// ToggleLike likes the post for userID, or unlikes it if already liked
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	if err := authz.RequireAuthenticated(userID); err != nil {
		return nil, err
	}

	var result models.LikeResult
	err := retryOnConflict(ctx, "toggle like", func() error {
		var err error
		result, err = s.postRepo.ToggleLike(ctx, postID, userID)
		return err
	})
	if err != nil {
		return nil, apperr.Ensure(err, "toggle like")
	}

	if result.Liked {
		s.notifyPostOwner(ctx, postID, userID, "%s liked your post!")
	}
	return &result, nil
}

// ListPosts returns every post newest first, as seen by viewerID
func (s *PostService) ListPosts(ctx context.Context, viewerID string) ([]models.PostView, error) {
	if err := authz.RequireAuthenticated(viewerID); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, apperr.Ensure(err, "list posts")
	}
	return feed.ProjectAll(posts, viewerID), nil
}

// ListUserPosts returns a user's posts newest first, as seen by viewerID
func (s *PostService) ListUserPosts(ctx context.Context, userID, viewerID string) ([]models.PostView, error) {
	if err := authz.RequireAuthenticated(viewerID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Ensure(err, "list user posts")
	}
	return feed.ProjectAll(posts, viewerID), nil
}

// GetPost returns one post as seen by viewerID
func (s *PostService) GetPost(ctx context.Context, postID, viewerID string) (*models.PostView, error) {
	if err := authz.RequireAuthenticated(viewerID); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, apperr.Ensure(err, "get post")
	}
	view := feed.Project(post, viewerID)
	return &view, nil
}

func (s *PostService) requirePostOwner(ctx context.Context, postID, requesterID string) error {
	if err := authz.RequireAuthenticated(requesterID); err != nil {
		return err
	}
	ownerID, err := s.postRepo.OwnerID(ctx, postID)
	if err != nil {
		return apperr.Ensure(err, "load post")
	}
	return authz.RequireOwner(requesterID, ownerID)
}

func (s *PostService) requireUser(ctx context.Context, userID string) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return apperr.Ensure(err, "load user")
	}
	if !exists {
		return apperr.New(apperr.NotFound, "user %s not found", userID)
	}
	return nil
}

// notifyPostOwner tells the post's author that actorID did something.
// Self-notifications are suppressed and lookup failures only get logged.
func (s *PostService) notifyPostOwner(ctx context.Context, postID, actorID, format string) {
	notifyOwner(ctx, s.postRepo, s.userRepo, s.notifier, postID, actorID, format)
}

func notifyOwner(ctx context.Context, posts PostStore, users UserStore, notifier Notifier, postID, actorID, format string) {
	ownerID, err := posts.OwnerID(ctx, postID)
	if err != nil {
		log.Warn().Err(err).Str("post_id", postID).Msg("Skipping notification, post owner unknown")
		return
	}
	if ownerID == actorID {
		return
	}
	actor, err := users.GetByID(ctx, actorID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", actorID).Msg("Skipping notification, actor unknown")
		return
	}
	notifier.Notify(ctx, ownerID, fmt.Sprintf(format, actor.Name))
}
