package repository

import (
	"context"
	"fmt"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postSelect = `
	SELECT p.id, p.user_id, u.name, p.content, p.likes, p.created_at
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

// PostRepository handles database operations for the post aggregate
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create creates a new post without media
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, content, likes, created_at)
		VALUES ($1, $2, $3, 0, $4)
	`
	_, err := r.db.Exec(ctx, query, post.ID, post.UserID, post.Content, post.CreatedAt)
	return classify(err, "create post")
}

// GetByID retrieves a post with its likes, media and comments
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	posts, err := r.queryPosts(ctx, postSelect+` WHERE p.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, apperr.New(apperr.NotFound, "post %s not found", id)
	}
	return posts[0], nil
}

// GetByIDs retrieves the posts that still exist among ids, keyed by ID
func (r *PostRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Post, error) {
	byID := make(map[string]*models.Post, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	posts, err := r.queryPosts(ctx, postSelect+` WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		byID[p.ID] = p
	}
	return byID, nil
}

// List retrieves every post, newest first
func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.queryPosts(ctx, postSelect+` ORDER BY p.created_at DESC, p.id DESC`)
}

// ListByUser retrieves a user's posts, newest first
func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	return r.queryPosts(ctx, postSelect+` WHERE p.user_id = $1 ORDER BY p.created_at DESC, p.id DESC`, userID)
}

// OwnerID returns the author of a post
func (r *PostRepository) OwnerID(ctx context.Context, postID string) (string, error) {
	var ownerID string
	err := r.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE id = $1`, postID).Scan(&ownerID)
	if err != nil {
		return "", classify(err, "get post %s", postID)
	}
	return ownerID, nil
}

// Update replaces the content when content is non-nil and the whole media set
// when media is non-nil, in one transaction.
func (r *PostRepository) Update(ctx context.Context, postID string, content *string, media []*models.Media) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&id); err != nil {
			return classify(err, "lock post %s", postID)
		}
		if content != nil {
			if _, err := tx.Exec(ctx, `UPDATE posts SET content = $1 WHERE id = $2`, *content, postID); err != nil {
				return classify(err, "update post content")
			}
		}
		if media != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM media WHERE post_id = $1`, postID); err != nil {
				return classify(err, "clear post media")
			}
			for _, m := range media {
				if err := insertMedia(ctx, tx, m); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Delete removes a post together with its likes, media, comments and shares
func (r *PostRepository) Delete(ctx context.Context, postID string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM shared_posts WHERE original_post_id = $1`,
			`DELETE FROM comments WHERE post_id = $1`,
			`DELETE FROM media WHERE post_id = $1`,
			`DELETE FROM post_likes WHERE post_id = $1`,
		} {
			if _, err := tx.Exec(ctx, stmt, postID); err != nil {
				return classify(err, "delete post children")
			}
		}
		result, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
		if err != nil {
			return classify(err, "delete post")
		}
		if result.RowsAffected() == 0 {
			return apperr.New(apperr.NotFound, "post %s not found", postID)
		}
		return nil
	})
}

// ToggleLike flips userID's like on a post. The post row is locked for the
// duration and the counter is recomputed from post_likes, so the counter
// always equals the number of liking users.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (models.LikeResult, error) {
	var result models.LikeResult
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&id); err != nil {
			return classify(err, "lock post %s", postID)
		}
		exists, err := userExists(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.New(apperr.NotFound, "user %s not found", userID)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return classify(err, "remove like")
		}
		result.Liked = tag.RowsAffected() == 0
		if result.Liked {
			_, err := tx.Exec(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
			if err != nil {
				return classify(err, "add like")
			}
		}

		err = tx.QueryRow(ctx, `
			UPDATE posts SET likes = (SELECT COUNT(*) FROM post_likes WHERE post_id = $1)
			WHERE id = $1
			RETURNING likes
		`, postID).Scan(&result.LikeCount)
		if err != nil {
			return classify(err, "update like counter")
		}
		return nil
	})
	if err != nil {
		return models.LikeResult{}, classify(err, "toggle like")
	}
	return result, nil
}

// queryPosts runs a post query and attaches likes, media and comments
func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	byID := make(map[string]*models.Post)
	var ids []string
	for rows.Next() {
		var post models.Post
		err := rows.Scan(&post.ID, &post.UserID, &post.AuthorName, &post.Content, &post.Likes, &post.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, &post)
		byID[post.ID] = &post
		ids = append(ids, post.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	if len(ids) == 0 {
		return posts, nil
	}

	if err := r.attachLikes(ctx, ids, byID); err != nil {
		return nil, err
	}
	media, err := listMediaByPosts(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range media {
		byID[m.PostID].Media = append(byID[m.PostID].Media, m)
	}
	comments, err := listCommentsByPosts(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		byID[c.PostID].Comments = append(byID[c.PostID].Comments, c)
	}
	return posts, nil
}

func (r *PostRepository) attachLikes(ctx context.Context, ids []string, byID map[string]*models.Post) error {
	rows, err := r.db.Query(ctx, `SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to get likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return fmt.Errorf("failed to scan like: %w", err)
		}
		byID[postID].LikedBy = append(byID[postID].LikedBy, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating likes: %w", err)
	}
	return nil
}
