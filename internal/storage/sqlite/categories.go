package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/finbook/internal/models"
	"github.com/mmynk/finbook/internal/storage"
)

// CreateCategory persists a new category for the owner.
func (o *ownerStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.CreatedAt == 0 {
		category.CreatedAt = time.Now().Unix()
	}
	category.OwnerID = o.ownerID

	err := o.s.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, owner_id, name, is_income, created_at) VALUES (?, ?, ?, ?, ?)",
			category.ID, category.OwnerID, category.Name, category.IsIncome, category.CreatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrNameExists
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetCategory retrieves one of the owner's categories by ID.
func (o *ownerStore) GetCategory(ctx context.Context, categoryID string) (*models.Category, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()

	category := &models.Category{}
	err := o.s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, name, is_income, created_at FROM categories WHERE id = ? AND owner_id = ?",
		categoryID, o.ownerID,
	).Scan(&category.ID, &category.OwnerID, &category.Name, &category.IsIncome, &category.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// ListCategories retrieves all of the owner's categories ordered by name.
func (o *ownerStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()

	rows, err := o.s.db.QueryContext(ctx,
		"SELECT id, owner_id, name, is_income, created_at FROM categories WHERE owner_id = ? ORDER BY name",
		o.ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.IsIncome, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory deletes one of the owner's categories, refusing while any of
// the owner's records still references it.
func (o *ownerStore) DeleteCategory(ctx context.Context, categoryID string) error {
	err := o.s.WithTx(ctx, func(tx *sql.Tx) error {
		var inUse int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM records WHERE category_id = ? AND owner_id = ?",
			categoryID, o.ownerID,
		).Scan(&inUse)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return storage.ErrCategoryInUse
		}

		res, err := tx.ExecContext(ctx,
			"DELETE FROM categories WHERE id = ? AND owner_id = ?",
			categoryID, o.ownerID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ErrNotFound
	}
	if errors.Is(err, storage.ErrCategoryInUse) {
		return storage.ErrCategoryInUse
	}
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
