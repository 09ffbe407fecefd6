package services

import (
	"context"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/authz"
	"skillshare-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// FollowService handles the follow graph
type FollowService struct {
	followRepo FollowStore
	userRepo   UserStore
	notifier   Notifier
}

// NewFollowService creates a new follow service
func NewFollowService(followRepo FollowStore, userRepo UserStore, notifier Notifier) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Follow makes followerID follow followeeID. The actor must be the follower.
// Following someone already followed is a no-op.
func (s *FollowService) Follow(ctx context.Context, actorID, followerID, followeeID string) error {
	if err := authz.RequireOwner(actorID, followerID); err != nil {
		return err
	}
	if followerID == followeeID {
		return apperr.New(apperr.InvalidArgument, "cannot follow yourself")
	}

	already, err := s.followRepo.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return apperr.Ensure(err, "follow user")
	}

	err = retryOnConflict(ctx, "follow user", func() error {
		return s.followRepo.Follow(ctx, followerID, followeeID)
	})
	if err != nil {
		return apperr.Ensure(err, "follow user")
	}

	if !already {
		s.notifyFollowed(ctx, followerID, followeeID)
	}
	return nil
}

// Unfollow removes the edge; unfollowing someone not followed is a no-op
func (s *FollowService) Unfollow(ctx context.Context, actorID, followerID, followeeID string) error {
	if err := authz.RequireOwner(actorID, followerID); err != nil {
		return err
	}
	err := retryOnConflict(ctx, "unfollow user", func() error {
		return s.followRepo.Unfollow(ctx, followerID, followeeID)
	})
	if err != nil {
		return apperr.Ensure(err, "unfollow user")
	}
	return nil
}

// IsFollowing reports whether followerID follows followeeID. Only the
// follower may ask.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID, requesterID string) (bool, error) {
	if err := authz.RequireOwner(requesterID, followerID); err != nil {
		return false, err
	}
	following, err := s.followRepo.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return false, apperr.Ensure(err, "check follow")
	}
	return following, nil
}

// ListFollowers returns the users following userID
func (s *FollowService) ListFollowers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, apperr.Ensure(err, "list followers")
	}
	return users, nil
}

// ListFollowing returns the users userID follows
func (s *FollowService) ListFollowing(ctx context.Context, userID string) ([]models.UserSummary, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, apperr.Ensure(err, "list following")
	}
	return users, nil
}

func (s *FollowService) requireUser(ctx context.Context, userID string) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return apperr.Ensure(err, "load user")
	}
	if !exists {
		return apperr.New(apperr.NotFound, "user %s not found", userID)
	}
	return nil
}

func (s *FollowService) notifyFollowed(ctx context.Context, followerID, followeeID string) {
	follower, err := s.userRepo.GetByID(ctx, followerID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", followerID).Msg("Skipping follow notification")
		return
	}
	s.notifier.Notify(ctx, followeeID, follower.Name+" started following you!")
}
