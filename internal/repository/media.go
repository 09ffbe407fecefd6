package repository

import (
	"context"
	"fmt"

	"skillshare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MediaRepository handles database operations for post media
type MediaRepository struct {
	db *pgxpool.Pool
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create attaches a media row to an existing post
func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	return insertMedia(ctx, r.db, media)
}

func insertMedia(ctx context.Context, q querier, media *models.Media) error {
	query := `
		INSERT INTO media (id, post_id, url, kind, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.Exec(ctx, query,
		media.ID, media.PostID, media.URL, string(media.Kind), media.Position, media.CreatedAt,
	)
	return classify(err, "create media")
}

func listMediaByPosts(ctx context.Context, q querier, postIDs []string) ([]*models.Media, error) {
	query := `
		SELECT id, post_id, url, kind, position, created_at
		FROM media
		WHERE post_id = ANY($1)
		ORDER BY post_id, position, created_at
	`
	rows, err := q.Query(ctx, query, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	defer rows.Close()

	var media []*models.Media
	for rows.Next() {
		var m models.Media
		var kind string
		if err := rows.Scan(&m.ID, &m.PostID, &m.URL, &kind, &m.Position, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		m.Kind = models.MediaKind(kind)
		media = append(media, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media: %w", err)
	}
	return media, nil
}
