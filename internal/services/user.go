package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/authz"
	"skillshare-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserService handles user-related business logic
type UserService struct {
	userRepo  UserStore
	storage   Storage
	jwtSecret string
	jwtTTL    time.Duration
}

// NewUserService creates a new user service
func NewUserService(userRepo UserStore, storage Storage, jwtSecret string, jwtTTL time.Duration) *UserService {
	return &UserService{
		userRepo:  userRepo,
		storage:   storage,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.jwtTTL).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", apperr.Wrap(apperr.Unauthorized, err, "invalid token")
	}

	if !token.Valid {
		return "", apperr.New(apperr.Unauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.New(apperr.Unauthorized, "invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", apperr.New(apperr.Unauthorized, "user_id not found in token")
	}

	return userID, nil
}

// Register returns the user with the given email, creating it on first sight,
// together with a fresh token.
func (s *UserService) Register(ctx context.Context, email, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, "", apperr.New(apperr.InvalidArgument, "a valid email is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if apperr.Is(err, apperr.NotFound) {
		user = &models.User{
			ID:        uuid.New().String(),
			Email:     email,
			Name:      name,
			CreatedAt: time.Now(),
		}
		err = s.userRepo.Create(ctx, user)
		if apperr.Is(err, apperr.InvalidArgument) {
			// Lost a race with a concurrent registration of the same email.
			user, err = s.userRepo.GetByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, "", apperr.Ensure(err, "register user")
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", apperr.Ensure(err, "register user")
	}
	return user, token, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Ensure(err, "get user")
	}
	return user, nil
}

// UpdateProfile changes the actor's name and/or bio
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, name, bio *string) (*models.User, error) {
	if err := authz.RequireAuthenticated(actorID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, apperr.Ensure(err, "update profile")
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperr.New(apperr.InvalidArgument, "name must not be empty")
		}
		user.Name = trimmed
	}
	if bio != nil {
		user.Bio = *bio
	}
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, apperr.Ensure(err, "update profile")
	}
	return user, nil
}

// UpdateProfilePhoto stores a new profile photo for the actor
func (s *UserService) UpdateProfilePhoto(ctx context.Context, actorID string, file models.MediaFile) (*models.User, error) {
	if err := authz.RequireAuthenticated(actorID); err != nil {
		return nil, err
	}
	if file.Empty() {
		return nil, apperr.New(apperr.InvalidArgument, "photo file is empty")
	}
	if models.MediaKindFor(file.ContentType) != models.MediaImage {
		return nil, apperr.New(apperr.InvalidArgument, "profile photo must be an image")
	}
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, apperr.Ensure(err, "update profile photo")
	}

	url, err := s.storage.Store(ctx, file.Data, file.ContentType, file.Filename)
	if err != nil {
		return nil, apperr.Ensure(err, "store profile photo")
	}
	user.ProfilePhotoURL = &url
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, apperr.Ensure(err, "update profile photo")
	}
	return user, nil
}

// UpdatePushToken registers (or clears, when nil) the actor's device token
func (s *UserService) UpdatePushToken(ctx context.Context, actorID string, pushToken *string) error {
	if err := authz.RequireAuthenticated(actorID); err != nil {
		return err
	}
	if pushToken != nil && strings.TrimSpace(*pushToken) == "" {
		pushToken = nil
	}
	if err := s.userRepo.UpdatePushToken(ctx, actorID, pushToken); err != nil {
		return apperr.Ensure(err, "update push token")
	}
	return nil
}
