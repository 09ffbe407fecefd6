package repository

import (
	"context"
	"fmt"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const commentSelect = `
	SELECT c.id, c.post_id, c.user_id, u.name, c.content, c.created_at
	FROM comments c
	JOIN users u ON u.id = c.user_id
`

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create creates a new comment. A missing post or user surfaces as NotFound
// through the foreign keys.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.PostID, comment.UserID, comment.Content, comment.CreatedAt,
	)
	return classify(err, "create comment")
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id).Scan(
		&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.Content, &c.CreatedAt,
	)
	if err != nil {
		return nil, classify(err, "get comment %s", id)
	}
	return &c, nil
}

// UpdateContent replaces a comment's text
func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) error {
	result, err := r.db.Exec(ctx, `UPDATE comments SET content = $1 WHERE id = $2`, content, id)
	if err != nil {
		return classify(err, "update comment")
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "comment %s not found", id)
	}
	return nil
}

// Delete deletes a comment by ID
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return classify(err, "delete comment")
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "comment %s not found", id)
	}
	return nil
}

// ListByPost retrieves a post's comments, oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	return listCommentsByPosts(ctx, r.db, []string{postID})
}

func listCommentsByPosts(ctx context.Context, q querier, postIDs []string) ([]*models.Comment, error) {
	rows, err := q.Query(ctx, commentSelect+` WHERE c.post_id = ANY($1) ORDER BY c.created_at, c.id`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}
