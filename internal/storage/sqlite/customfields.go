package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/contactbook/internal/models"
)

// CreateFieldDefinition persists a new custom field definition.
func (s *SQLiteStore) CreateFieldDefinition(ctx context.Context, field *models.CustomFieldDefinition) error {
	if field.ID == "" {
		field.ID = uuid.New().String()
	}
	if field.Type == "" {
		field.Type = models.FieldTypeText
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO custom_fields_definitions (id, field_name, field_type) VALUES (?, ?, ?)",
		field.ID, field.Name, string(field.Type),
	)
	if isUniqueViolation(err) {
		return &models.DuplicateKeyError{Entity: "field", Field: "field_name", Value: field.Name}
	}
	if err != nil {
		return fmt.Errorf("failed to insert field definition: %w", err)
	}

	return nil
}

// ListFieldDefinitions retrieves all custom field definitions ordered by name.
func (s *SQLiteStore) ListFieldDefinitions(ctx context.Context) ([]*models.CustomFieldDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, field_name, field_type FROM custom_fields_definitions ORDER BY field_name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list field definitions: %w", err)
	}
	defer rows.Close()

	var fields []*models.CustomFieldDefinition
	for rows.Next() {
		field := &models.CustomFieldDefinition{}
		var fieldType string
		if err := rows.Scan(&field.ID, &field.Name, &fieldType); err != nil {
			return nil, fmt.Errorf("failed to scan field definition: %w", err)
		}
		field.Type = models.FieldType(fieldType)
		fields = append(fields, field)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate field definitions: %w", err)
	}

	return fields, nil
}

// DeleteFieldDefinition removes a definition by ID. Values are removed by
// ON DELETE CASCADE.
func (s *SQLiteStore) DeleteFieldDefinition(ctx context.Context, fieldID string) error {
	return deleteByID(ctx, s.db, "custom_fields_definitions", "field", fieldID)
}
