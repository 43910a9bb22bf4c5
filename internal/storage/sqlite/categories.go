package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/contactbook/internal/models"
)

// CreateCategory persists a new category to the database.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	// Generate ID if not set
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name) VALUES (?, ?)",
		category.ID, category.Name,
	)
	if isUniqueViolation(err) {
		return &models.DuplicateKeyError{Entity: "category", Field: "name", Value: category.Name}
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return nil
}

// ListCategories retrieves all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// DeleteCategory removes a category by ID. Contact links referencing it are
// removed by ON DELETE CASCADE; the contacts themselves are untouched.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, categoryID string) error {
	return deleteByID(ctx, s.db, "categories", "category", categoryID)
}
