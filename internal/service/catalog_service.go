package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/contactbook/internal/codec"
	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/storage"
)

// CatalogService manages categories and custom field definitions.
type CatalogService struct {
	store storage.Store
	queue *MutationQueue
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store storage.Store, queue *MutationQueue) *CatalogService {
	return &CatalogService{store: store, queue: queue}
}

// CreateCategory creates a category with a unique, non-empty name.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "required"}
	}

	category := &models.Category{Name: name}
	if err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.CreateCategory(ctx, category)
	}); err != nil {
		slog.Warn("CreateCategory failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("Category created", "category_id", category.ID, "name", name)
	return category, nil
}

// DeleteCategory deletes a category and unlinks it from every contact.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.DeleteCategory(ctx, categoryID)
	}); err != nil {
		slog.Warn("DeleteCategory failed", "category_id", categoryID, "error", err)
		return err
	}
	slog.Info("Category deleted", "category_id", categoryID)
	return nil
}

// ListCategories returns all categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, &models.StorageError{Op: "list categories", Err: err}
	}
	return categories, nil
}

// EnsureCategories creates each named category that does not exist yet and
// returns how many were created.
func (s *CatalogService) EnsureCategories(ctx context.Context, names []string) (int, error) {
	created := 0
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		existing, err := s.store.ListCategories(ctx)
		if err != nil {
			return &models.StorageError{Op: "list categories", Err: err}
		}
		have := make(map[string]bool, len(existing))
		for _, c := range existing {
			have[c.Name] = true
		}

		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" || have[name] {
				continue
			}
			if err := s.store.CreateCategory(ctx, &models.Category{Name: name}); err != nil {
				var dup *models.DuplicateKeyError
				if errors.As(err, &dup) {
					continue
				}
				return &models.StorageError{Op: "create category", Err: err}
			}
			have[name] = true
			created++
		}
		return nil
	})
	if err != nil {
		return created, err
	}
	if created > 0 {
		slog.Info("Categories seeded", "created", created)
	}
	return created, nil
}

// CreateField creates a custom field definition. fieldType is TEXT or DATE;
// empty means TEXT.
func (s *CatalogService) CreateField(ctx context.Context, name, fieldType string) (*models.CustomFieldDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &models.ValidationError{Field: "field_name", Reason: "required"}
	}
	// A spreadsheet column with this name would import as the built-in.
	if codec.IsBuiltinHeader(name) {
		return nil, &models.ValidationError{Field: "field_name", Reason: fmt.Sprintf("%q is a reserved column name", name)}
	}
	typ, err := models.ParseFieldType(fieldType)
	if err != nil {
		return nil, err
	}

	field := &models.CustomFieldDefinition{Name: name, Type: typ}
	if err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.CreateFieldDefinition(ctx, field)
	}); err != nil {
		slog.Warn("CreateField failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("Field created", "field_id", field.ID, "name", name, "type", typ)
	return field, nil
}

// DeleteField deletes a definition and every contact's value for it.
func (s *CatalogService) DeleteField(ctx context.Context, fieldID string) error {
	if err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.DeleteFieldDefinition(ctx, fieldID)
	}); err != nil {
		slog.Warn("DeleteField failed", "field_id", fieldID, "error", err)
		return err
	}
	slog.Info("Field deleted", "field_id", fieldID)
	return nil
}

// ListFields returns all field definitions ordered by name.
func (s *CatalogService) ListFields(ctx context.Context) ([]*models.CustomFieldDefinition, error) {
	fields, err := s.store.ListFieldDefinitions(ctx)
	if err != nil {
		return nil, &models.StorageError{Op: "list fields", Err: err}
	}
	return fields, nil
}
