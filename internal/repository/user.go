package repository

import (
	"context"
	"fmt"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, name, bio, profile_photo_url, push_token, created_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Bio,
		&user.ProfilePhotoURL, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, bio, profile_photo_url, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.Bio, user.ProfilePhotoURL, user.PushToken, user.CreatedAt,
	)
	return classify(err, "create user")
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify(err, "get user %s", id)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, classify(err, "get user by email")
	}
	return user, nil
}

// Exists checks if a user exists
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	return userExists(ctx, r.db, id)
}

// UpdateProfile updates the editable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = $1, bio = $2, profile_photo_url = $3 WHERE id = $4`
	result, err := r.db.Exec(ctx, query, user.Name, user.Bio, user.ProfilePhotoURL, user.ID)
	if err != nil {
		return classify(err, "update user profile")
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// PushToken returns the device token registered for a user, or "" when none
func (r *UserRepository) PushToken(ctx context.Context, userID string) (string, error) {
	var token *string
	err := r.db.QueryRow(ctx, `SELECT push_token FROM users WHERE id = $1`, userID).Scan(&token)
	if err != nil {
		return "", classify(err, "get push token")
	}
	if token == nil {
		return "", nil
	}
	return *token, nil
}
