// Package memory provides an in-process implementation of storage.Store.
// It mirrors the SQLite store's semantics, including cascade deletes and
// ordering, and is used by tests and by the CLI's dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/storage"
)

var (
	_ storage.Store       = (*Store)(nil)
	_ storage.Snapshotter = (*Store)(nil)
)

// Store keeps contacts, categories and field definitions in maps guarded by
// a single lock. Returned values are copies.
type Store struct {
	mu         sync.RWMutex
	contacts   map[string]*models.Contact
	phones     map[string]string // phone -> contact ID
	categories map[string]*models.Category
	fields     map[string]*models.CustomFieldDefinition
}

// New creates an empty Store.
func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.contacts = make(map[string]*models.Contact)
	s.phones = make(map[string]string)
	s.categories = make(map[string]*models.Category)
	s.fields = make(map[string]*models.CustomFieldDefinition)
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// CreateContact stores a copy of contact and assigns its ID.
func (s *Store) CreateContact(_ context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.phones[contact.Phone]; taken {
		return &models.DuplicateKeyError{Entity: "contact", Field: "phone", Value: contact.Phone}
	}
	if err := s.checkRefs(contact); err != nil {
		return err
	}

	id := contact.ID
	if id == "" {
		id = uuid.New().String()
	}
	if _, exists := s.contacts[id]; exists {
		return &models.DuplicateKeyError{Entity: "contact", Field: "id", Value: id}
	}

	contact.ID = id
	s.contacts[id] = normalized(contact)
	s.phones[contact.Phone] = id
	return nil
}

// GetContact returns a copy of the contact with the given ID.
func (s *Store) GetContact(_ context.Context, contactID string) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[contactID]
	if !ok {
		return nil, fmt.Errorf("contact %s: %w", contactID, models.ErrNotFound)
	}
	return c.Clone(), nil
}

// UpdateContact overwrites the stored contact, including its side tables.
func (s *Store) UpdateContact(_ context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.contacts[contact.ID]
	if !ok {
		return fmt.Errorf("contact %s: %w", contact.ID, models.ErrNotFound)
	}
	if owner, taken := s.phones[contact.Phone]; taken && owner != contact.ID {
		return &models.DuplicateKeyError{Entity: "contact", Field: "phone", Value: contact.Phone}
	}
	if err := s.checkRefs(contact); err != nil {
		return err
	}

	delete(s.phones, old.Phone)
	s.phones[contact.Phone] = contact.ID
	s.contacts[contact.ID] = normalized(contact)
	return nil
}

// DeleteContact removes the contact; its links and values live on the
// contact itself and go with it.
func (s *Store) DeleteContact(_ context.Context, contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[contactID]
	if !ok {
		return fmt.Errorf("contact %s: %w", contactID, models.ErrNotFound)
	}
	delete(s.phones, c.Phone)
	delete(s.contacts, contactID)
	return nil
}

// ListContacts returns copies of matching contacts ordered by name, then phone.
func (s *Store) ListContacts(_ context.Context, filter models.ContactFilter) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Contact
	for _, c := range s.contacts {
		if matches(c, filter) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Phone < out[j].Phone
	})
	return out, nil
}

// FindContactByPhone returns the owner of phone, or nil.
func (s *Store) FindContactByPhone(_ context.Context, phone string) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.phones[phone]
	if !ok {
		return nil, nil
	}
	return s.contacts[id].Clone(), nil
}

// CreateCategory stores a new category.
func (s *Store) CreateCategory(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == category.Name {
			return &models.DuplicateKeyError{Entity: "category", Field: "name", Value: category.Name}
		}
	}
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	cp := *category
	s.categories[cp.ID] = &cp
	return nil
}

// DeleteCategory removes the category and unlinks it from every contact.
func (s *Store) DeleteCategory(_ context.Context, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[categoryID]; !ok {
		return fmt.Errorf("category %s: %w", categoryID, models.ErrNotFound)
	}
	delete(s.categories, categoryID)
	for _, c := range s.contacts {
		c.CategoryIDs = without(c.CategoryIDs, categoryID)
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(_ context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CreateFieldDefinition stores a new custom field definition.
func (s *Store) CreateFieldDefinition(_ context.Context, field *models.CustomFieldDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.fields {
		if existing.Name == field.Name {
			return &models.DuplicateKeyError{Entity: "field", Field: "field_name", Value: field.Name}
		}
	}
	if field.ID == "" {
		field.ID = uuid.New().String()
	}
	if field.Type == "" {
		field.Type = models.FieldTypeText
	}
	cp := *field
	s.fields[cp.ID] = &cp
	return nil
}

// DeleteFieldDefinition removes the definition and every value of it.
func (s *Store) DeleteFieldDefinition(_ context.Context, fieldID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fields[fieldID]; !ok {
		return fmt.Errorf("field %s: %w", fieldID, models.ErrNotFound)
	}
	delete(s.fields, fieldID)
	for _, c := range s.contacts {
		delete(c.Fields, fieldID)
	}
	return nil
}

// ListFieldDefinitions returns all definitions ordered by name.
func (s *Store) ListFieldDefinitions(_ context.Context) ([]*models.CustomFieldDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.CustomFieldDefinition, 0, len(s.fields))
	for _, f := range s.fields {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// checkRefs rejects links to unknown categories or field definitions.
// Caller holds the lock.
func (s *Store) checkRefs(c *models.Contact) error {
	for _, id := range c.CategoryIDs {
		if _, ok := s.categories[id]; !ok {
			return fmt.Errorf("category %s: %w", id, models.ErrNotFound)
		}
	}
	for id := range c.Fields {
		if _, ok := s.fields[id]; !ok {
			return fmt.Errorf("field %s: %w", id, models.ErrNotFound)
		}
	}
	return nil
}

// normalized copies c the way the SQLite store would read it back: links
// deduplicated and sorted, empty values dropped.
func normalized(c *models.Contact) *models.Contact {
	out := c.Clone()
	out.CategoryIDs = nil
	seen := make(map[string]bool, len(c.CategoryIDs))
	for _, id := range c.CategoryIDs {
		if !seen[id] {
			seen[id] = true
			out.CategoryIDs = append(out.CategoryIDs, id)
		}
	}
	sort.Strings(out.CategoryIDs)

	out.Fields = nil
	for id, v := range c.Fields {
		if v == "" {
			continue
		}
		if out.Fields == nil {
			out.Fields = make(map[string]string)
		}
		out.Fields[id] = v
	}
	return out
}

func matches(c *models.Contact, f models.ContactFilter) bool {
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	if f.CategoryID != "" && !c.HasCategory(f.CategoryID) {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		lq := strings.ToLower(q)
		return strings.Contains(strings.ToLower(c.Name), lq) ||
			strings.Contains(strings.ToLower(c.Email), lq) ||
			strings.Contains(c.Phone, q)
	}
	return true
}

func without(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
