package repository

import (
	"context"
	"fmt"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const progressSelect = `
	SELECT pu.id, pu.user_id, u.name, pu.content, pu.completed, pu.new_skills, pu.created_at
	FROM progress_updates pu
	JOIN users u ON u.id = pu.user_id
`

// ProgressRepository handles database operations for progress updates
type ProgressRepository struct {
	db *pgxpool.Pool
}

// NewProgressRepository creates a new progress update repository
func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Create creates a new progress update
func (r *ProgressRepository) Create(ctx context.Context, update *models.ProgressUpdate) error {
	query := `
		INSERT INTO progress_updates (id, user_id, content, completed, new_skills, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		update.ID, update.UserID, update.Content, update.Completed, update.NewSkills, update.CreatedAt,
	)
	return classify(err, "create progress update")
}

// GetByID retrieves a progress update by ID
func (r *ProgressRepository) GetByID(ctx context.Context, id string) (*models.ProgressUpdate, error) {
	var u models.ProgressUpdate
	err := r.db.QueryRow(ctx, progressSelect+` WHERE pu.id = $1`, id).Scan(
		&u.ID, &u.UserID, &u.AuthorName, &u.Content, &u.Completed, &u.NewSkills, &u.CreatedAt,
	)
	if err != nil {
		return nil, classify(err, "get progress update %s", id)
	}
	return &u, nil
}

// Update replaces the text fields of a progress update
func (r *ProgressRepository) Update(ctx context.Context, id string, input models.ProgressInput) error {
	query := `UPDATE progress_updates SET content = $1, completed = $2, new_skills = $3 WHERE id = $4`
	result, err := r.db.Exec(ctx, query, input.Content, input.Completed, input.NewSkills, id)
	if err != nil {
		return classify(err, "update progress update")
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "progress update %s not found", id)
	}
	return nil
}

// Delete deletes a progress update by ID
func (r *ProgressRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM progress_updates WHERE id = $1`, id)
	if err != nil {
		return classify(err, "delete progress update")
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "progress update %s not found", id)
	}
	return nil
}

// List retrieves every progress update, newest first
func (r *ProgressRepository) List(ctx context.Context) ([]*models.ProgressUpdate, error) {
	rows, err := r.db.Query(ctx, progressSelect+` ORDER BY pu.created_at DESC, pu.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress updates: %w", err)
	}
	defer rows.Close()

	updates := []*models.ProgressUpdate{}
	for rows.Next() {
		var u models.ProgressUpdate
		if err := rows.Scan(&u.ID, &u.UserID, &u.AuthorName, &u.Content, &u.Completed, &u.NewSkills, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress update: %w", err)
		}
		updates = append(updates, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress updates: %w", err)
	}
	return updates, nil
}
