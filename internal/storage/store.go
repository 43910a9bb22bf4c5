// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/contactbook/internal/models"
)

// Store defines the interface for contact storage operations.
// This abstraction allows swapping storage backends (SQLite, in-memory, a
// remote API) without changing the service layer or the import engine.
//
// Every operation is consistent on its own. No multi-operation atomicity is
// offered; callers serialize mutations themselves.
type Store interface {
	ContactStore
	CategoryStore
	FieldStore

	// Close releases any resources held by the store.
	Close() error
}

// ContactStore persists contacts and their side tables.
type ContactStore interface {
	// CreateContact persists a new contact with its category links and field
	// values. The contact.ID field will be populated by the store.
	// Returns *models.DuplicateKeyError if the phone is already taken.
	CreateContact(ctx context.Context, contact *models.Contact) error

	// GetContact retrieves a contact by ID, including side tables.
	// Returns an error wrapping models.ErrNotFound if it does not exist.
	GetContact(ctx context.Context, contactID string) (*models.Contact, error)

	// UpdateContact overwrites an existing contact. Category links and field
	// values are replaced with the contact's current sets.
	UpdateContact(ctx context.Context, contact *models.Contact) error

	// DeleteContact removes a contact and cascades to its links and values.
	DeleteContact(ctx context.Context, contactID string) error

	// ListContacts returns contacts matching filter ordered by name, then
	// phone, using byte-wise comparison.
	ListContacts(ctx context.Context, filter models.ContactFilter) ([]*models.Contact, error)

	// FindContactByPhone returns the contact owning phone, or nil and no
	// error if there is none.
	FindContactByPhone(ctx context.Context, phone string) (*models.Contact, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	// CreateCategory persists a new category and assigns its ID.
	// Returns *models.DuplicateKeyError if the name is taken.
	CreateCategory(ctx context.Context, category *models.Category) error

	// DeleteCategory removes a category and every link referencing it.
	DeleteCategory(ctx context.Context, categoryID string) error

	// ListCategories returns all categories ordered by name.
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

// FieldStore persists custom field definitions.
type FieldStore interface {
	// CreateFieldDefinition persists a new definition and assigns its ID.
	// Returns *models.DuplicateKeyError if the name is taken.
	CreateFieldDefinition(ctx context.Context, field *models.CustomFieldDefinition) error

	// DeleteFieldDefinition removes a definition and every value of it.
	DeleteFieldDefinition(ctx context.Context, fieldID string) error

	// ListFieldDefinitions returns all definitions ordered by name.
	ListFieldDefinitions(ctx context.Context) ([]*models.CustomFieldDefinition, error)
}

// Snapshotter is implemented by stores that can serialize their full state
// into an opaque byte container and restore it.
type Snapshotter interface {
	// ExportSnapshot returns the complete store contents.
	ExportSnapshot(ctx context.Context) ([]byte, error)

	// ImportSnapshot replaces the complete store contents with data.
	// Returns *models.ParseError if data is not a valid snapshot.
	ImportSnapshot(ctx context.Context, data []byte) error
}
