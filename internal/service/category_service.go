package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/finbook/internal/models"
	"github.com/mmynk/finbook/internal/storage"
)

// CategoryService manages owner-scoped categories.
type CategoryService struct {
	store storage.Store
}

// NewCategoryService creates a CategoryService with the given storage backend.
func NewCategoryService(store storage.Store) *CategoryService {
	return &CategoryService{store: store}
}

// CreateCategory validates and persists a new category for the owner.
func (s *CategoryService) CreateCategory(ctx context.Context, ownerID, name string, isIncome bool) (*models.Category, error) {
	if name == "" || len(name) > maxNameLength {
		return nil, validationf("name must be 1-%d characters", maxNameLength)
	}

	category := &models.Category{Name: name, IsIncome: isIncome}
	err := s.store.Owner(ownerID).CreateCategory(ctx, category)
	if errors.Is(err, storage.ErrNameExists) {
		return nil, conflictf("category %q already exists", name)
	}
	if err != nil {
		return nil, internal("failed to create category", err)
	}

	slog.Info("category created", "category_id", category.ID, "owner_id", ownerID, "name", name)
	return category, nil
}

// ListCategories retrieves all of the owner's categories.
func (s *CategoryService) ListCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	categories, err := s.store.Owner(ownerID).ListCategories(ctx)
	if err != nil {
		return nil, internal("failed to list categories", err)
	}
	return categories, nil
}

// DeleteCategory deletes one of the owner's categories. Deleting a category
// that records still reference is a conflict.
func (s *CategoryService) DeleteCategory(ctx context.Context, ownerID, categoryID string) error {
	err := s.store.Owner(ownerID).DeleteCategory(ctx, categoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return notFoundf("category %s not found", categoryID)
	}
	if errors.Is(err, storage.ErrCategoryInUse) {
		return conflictf("category %s is still referenced by records", categoryID)
	}
	if err != nil {
		return internal("failed to delete category", err)
	}
	slog.Info("category deleted", "category_id", categoryID, "owner_id", ownerID)
	return nil
}
