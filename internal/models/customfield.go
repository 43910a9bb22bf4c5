package models

import (
	"fmt"
	"strings"
)

// FieldType is the type of a custom field.
type FieldType string

const (
	FieldTypeText FieldType = "TEXT"
	FieldTypeDate FieldType = "DATE"
)

// ParseFieldType converts s into a FieldType. An empty string yields TEXT.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", FieldTypeText:
		return FieldTypeText, nil
	case FieldTypeDate:
		return FieldTypeDate, nil
	default:
		return "", &ValidationError{Field: "field_type", Reason: fmt.Sprintf("unknown type %q", s)}
	}
}

// CustomFieldDefinition describes a user-defined contact attribute.
type CustomFieldDefinition struct {
	// ID is the unique identifier for the definition (UUID format).
	ID string

	// Name is unique across definitions and doubles as the spreadsheet
	// column header on export.
	Name string

	Type FieldType
}

// CustomFieldValue is the value of one field for one contact.
type CustomFieldValue struct {
	ContactID string
	FieldID   string
	Value     string
}
