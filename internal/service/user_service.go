package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/finbook/internal/models"
	"github.com/mmynk/finbook/internal/storage"
)

// UserService manages the user registry split participants resolve against.
type UserService struct {
	store storage.Store
}

// NewUserService creates a UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// CreateUser registers a new user.
func (s *UserService) CreateUser(ctx context.Context, name string) (*models.User, error) {
	if name == "" || len(name) > maxNameLength {
		return nil, validationf("name must be 1-%d characters", maxNameLength)
	}

	user := &models.User{Name: name}
	err := s.store.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrNameExists) {
		return nil, conflictf("user %q already exists", name)
	}
	if err != nil {
		return nil, internal("failed to create user", err)
	}

	slog.Info("user created", "user_id", user.ID, "name", name)
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundf("user %s not found", userID)
	}
	if err != nil {
		return nil, internal("failed to get user", err)
	}
	return user, nil
}
