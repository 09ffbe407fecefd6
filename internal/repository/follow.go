package repository

import (
	"context"
	"fmt"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FollowRepository handles database operations for follow edges.
// An edge is a single (follower_id, followee_id) row; both the followers
// and the following view are read from it.
type FollowRepository struct {
	db *pgxpool.Pool
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow inserts the edge if it does not exist yet
func (r *FollowRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, id := range []string{followerID, followeeID} {
			exists, err := userExists(ctx, tx, id)
			if err != nil {
				return err
			}
			if !exists {
				return apperr.New(apperr.NotFound, "user %s not found", id)
			}
		}
		query := `
			INSERT INTO follows (follower_id, followee_id)
			VALUES ($1, $2)
			ON CONFLICT (follower_id, followee_id) DO NOTHING
		`
		_, err := tx.Exec(ctx, query, followerID, followeeID)
		return err
	})
	return classify(err, "follow user")
}

// Unfollow removes the edge; a missing edge is not an error
func (r *FollowRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	return classify(err, "unfollow user")
}

// IsFollowing checks whether followerID follows followeeID
func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, followerID, followeeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

// ListFollowers retrieves the users following userID
func (r *FollowRepository) ListFollowers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	query := `
		SELECT u.id, u.name, u.email, u.bio, u.profile_photo_url
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at
	`
	return r.listUsers(ctx, query, userID)
}

// ListFollowing retrieves the users userID follows
func (r *FollowRepository) ListFollowing(ctx context.Context, userID string) ([]models.UserSummary, error) {
	query := `
		SELECT u.id, u.name, u.email, u.bio, u.profile_photo_url
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at
	`
	return r.listUsers(ctx, query, userID)
}

func (r *FollowRepository) listUsers(ctx context.Context, query, userID string) ([]models.UserSummary, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow edges: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Bio, &u.ProfilePhotoURL); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
