package repository

import (
	"context"
	"fmt"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shareSelect = `
	SELECT s.id, s.user_id, u.name, s.original_post_id, s.share_comment, s.shared_at
	FROM shared_posts s
	JOIN users u ON u.id = s.user_id
`

// ShareRepository handles database operations for shared posts
type ShareRepository struct {
	db *pgxpool.Pool
}

// NewShareRepository creates a new share repository
func NewShareRepository(db *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{db: db}
}

// Create creates a new share of an existing post
func (r *ShareRepository) Create(ctx context.Context, share *models.SharedPost) error {
	query := `
		INSERT INTO shared_posts (id, user_id, original_post_id, share_comment, shared_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		share.ID, share.UserID, share.OriginalPostID, share.ShareComment, share.SharedAt,
	)
	return classify(err, "create shared post")
}

// GetByID retrieves a share by ID
func (r *ShareRepository) GetByID(ctx context.Context, id string) (*models.SharedPost, error) {
	var s models.SharedPost
	err := r.db.QueryRow(ctx, shareSelect+` WHERE s.id = $1`, id).Scan(
		&s.ID, &s.UserID, &s.SharerName, &s.OriginalPostID, &s.ShareComment, &s.SharedAt,
	)
	if err != nil {
		return nil, classify(err, "get shared post %s", id)
	}
	return &s, nil
}

// Delete deletes a share by ID
func (r *ShareRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM shared_posts WHERE id = $1`, id)
	if err != nil {
		return classify(err, "delete shared post")
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "shared post %s not found", id)
	}
	return nil
}

// ListByUser retrieves a user's shares, newest first
func (r *ShareRepository) ListByUser(ctx context.Context, userID string) ([]*models.SharedPost, error) {
	rows, err := r.db.Query(ctx, shareSelect+` WHERE s.user_id = $1 ORDER BY s.shared_at DESC, s.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shared posts: %w", err)
	}
	defer rows.Close()

	var shares []*models.SharedPost
	for rows.Next() {
		var s models.SharedPost
		if err := rows.Scan(&s.ID, &s.UserID, &s.SharerName, &s.OriginalPostID, &s.ShareComment, &s.SharedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shared post: %w", err)
		}
		shares = append(shares, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shared posts: %w", err)
	}
	return shares, nil
}
