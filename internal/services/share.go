package services

import (
	"context"
	"strings"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/authz"
	"skillshare-backend/internal/feed"
	"skillshare-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ShareService handles reposts. A share references its original post and
// every read resolves that post live.
type ShareService struct {
	shareRepo ShareStore
	postRepo  PostStore
	userRepo  UserStore
	notifier  Notifier
}

// NewShareService creates a new share service
func NewShareService(shareRepo ShareStore, postRepo PostStore, userRepo UserStore, notifier Notifier) *ShareService {
	return &ShareService{
		shareRepo: shareRepo,
		postRepo:  postRepo,
		userRepo:  userRepo,
		notifier:  notifier,
	}
}

// SharePost creates a share of postID by sharerID with an optional comment
func (s *ShareService) SharePost(ctx context.Context, postID, sharerID string, comment *string) (*models.SharedPost, error) {
	if err := authz.RequireAuthenticated(sharerID); err != nil {
		return nil, err
	}

	sharer, err := s.userRepo.GetByID(ctx, sharerID)
	if err != nil {
		return nil, apperr.Ensure(err, "share post")
	}
	if _, err := s.postRepo.OwnerID(ctx, postID); err != nil {
		return nil, apperr.Ensure(err, "share post")
	}
	if comment != nil && strings.TrimSpace(*comment) == "" {
		comment = nil
	}

	share := &models.SharedPost{
		ID:             uuid.New().String(),
		UserID:         sharer.ID,
		SharerName:     sharer.Name,
		OriginalPostID: postID,
		ShareComment:   comment,
		SharedAt:       time.Now(),
	}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, apperr.Ensure(err, "share post")
	}

	notifyOwner(ctx, s.postRepo, s.userRepo, s.notifier, postID, sharerID, "%s shared your post!")
	return share, nil
}

// DeleteShare removes a share; only the sharer may do so
func (s *ShareService) DeleteShare(ctx context.Context, shareID, requesterID string) error {
	if err := authz.RequireAuthenticated(requesterID); err != nil {
		return err
	}
	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		return apperr.Ensure(err, "delete share")
	}
	if err := authz.RequireOwner(requesterID, share.UserID); err != nil {
		return err
	}
	if err := s.shareRepo.Delete(ctx, shareID); err != nil {
		return apperr.Ensure(err, "delete share")
	}
	return nil
}

// ListShares returns userID's shares, newest first
func (s *ShareService) ListShares(ctx context.Context, userID, viewerID string) ([]models.SharedPostView, error) {
	if err := authz.RequireAuthenticated(viewerID); err != nil {
		return nil, err
	}
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, apperr.Ensure(err, "list shares")
	}
	if !exists {
		return nil, apperr.New(apperr.NotFound, "user %s not found", userID)
	}
	return s.listByUser(ctx, userID)
}

// ListMyShares returns the viewer's own shares, newest first
func (s *ShareService) ListMyShares(ctx context.Context, viewerID string) ([]models.SharedPostView, error) {
	if err := authz.RequireAuthenticated(viewerID); err != nil {
		return nil, err
	}
	return s.listByUser(ctx, viewerID)
}

// listByUser resolves every share's original post. Shares whose original
// no longer exists are left out of the result.
func (s *ShareService) listByUser(ctx context.Context, userID string) ([]models.SharedPostView, error) {
	shares, err := s.shareRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Ensure(err, "list shares")
	}

	ids := make([]string, 0, len(shares))
	for _, share := range shares {
		ids = append(ids, share.OriginalPostID)
	}
	originals, err := s.postRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Ensure(err, "list shares")
	}

	views := make([]models.SharedPostView, 0, len(shares))
	for _, share := range shares {
		original, ok := originals[share.OriginalPostID]
		if !ok {
			log.Warn().
				Str("shared_post_id", share.ID).
				Str("original_post_id", share.OriginalPostID).
				Msg("Skipping share of deleted post")
			continue
		}
		views = append(views, feed.ProjectShare(share, original))
	}
	return views, nil
}
