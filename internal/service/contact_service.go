package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/contactbook/internal/codec"
	"github.com/mmynk/contactbook/internal/metrics"
	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/reconcile"
	"github.com/mmynk/contactbook/internal/storage"
)

// BulkResult reports the outcome of a multi-contact operation.
type BulkResult struct {
	Affected int `json:"affected"`

	// Missing lists requested IDs that did not exist.
	Missing []string `json:"missing,omitempty"`
}

// ContactService handles single-contact saves and bulk edits.
type ContactService struct {
	store storage.Store
	queue *MutationQueue
}

// NewContactService creates a new ContactService with the given storage
// backend. Services sharing a queue never mutate concurrently.
func NewContactService(store storage.Store, queue *MutationQueue) *ContactService {
	return &ContactService{store: store, queue: queue}
}

// Save creates the contact when input.ID is empty and overwrites it
// otherwise. Name and phone are required, the birthday must be a date, and
// the phone may not belong to another contact. Category links and field
// values are replaced with input's sets.
func (s *ContactService) Save(ctx context.Context, input *models.Contact) (*models.Contact, error) {
	slog.Info("SaveContact request received",
		"contact_id", input.ID,
		"categories_count", len(input.CategoryIDs),
		"fields_count", len(input.Fields),
	)

	contact := input.Clone()
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Phone = strings.TrimSpace(contact.Phone)
	contact.Email = strings.TrimSpace(contact.Email)
	contact.Address = strings.TrimSpace(contact.Address)
	contact.Birthday = strings.TrimSpace(contact.Birthday)

	for _, f := range []struct{ name, value string }{
		{"name", contact.Name},
		{"phone", contact.Phone},
		{"email", contact.Email},
		{"address", contact.Address},
	} {
		if strings.ContainsAny(f.value, "\r\n") {
			return nil, &models.ValidationError{Field: f.name, Reason: "must be a single line"}
		}
	}

	if contact.Birthday != "" {
		t, err := codec.ParseBirthday(contact.Birthday)
		if err != nil {
			return nil, &models.ValidationError{Field: "birthday", Reason: "expected YYYY-MM-DD", Err: err}
		}
		contact.Birthday = t.Format("2006-01-02")
	}

	err := s.queue.Do(ctx, func(ctx context.Context) error {
		if contact.ID != "" {
			if _, err := s.store.GetContact(ctx, contact.ID); err != nil {
				return err
			}
		}

		seen := reconcile.PhoneSet{}
		owner, err := s.store.FindContactByPhone(ctx, contact.Phone)
		if err != nil {
			return &models.StorageError{Op: "find phone", Err: err}
		}
		if owner != nil {
			seen[owner.Phone] = owner.ID
		}
		if err := reconcile.TryAdmit(contact, seen, reconcile.Policy{RequireName: true, SelfID: contact.ID}); err != nil {
			return err
		}
		if err := s.checkRefs(ctx, contact); err != nil {
			return err
		}

		if contact.ID == "" {
			return s.store.CreateContact(ctx, contact)
		}
		return s.store.UpdateContact(ctx, contact)
	})
	if err != nil {
		slog.Warn("SaveContact failed", "contact_id", input.ID, "phone", contact.Phone, "error", err)
		return nil, err
	}

	if input.ID == "" {
		refreshContactsGauge(ctx, s.store)
	}
	slog.Info("Contact saved", "contact_id", contact.ID, "created", input.ID == "")
	return contact, nil
}

// checkRefs rejects unknown category and field ids and normalizes DATE
// field values.
func (s *ContactService) checkRefs(ctx context.Context, contact *models.Contact) error {
	if len(contact.CategoryIDs) > 0 {
		categories, err := s.store.ListCategories(ctx)
		if err != nil {
			return &models.StorageError{Op: "list categories", Err: err}
		}
		known := make(map[string]bool, len(categories))
		for _, c := range categories {
			known[c.ID] = true
		}
		for _, id := range contact.CategoryIDs {
			if !known[id] {
				return &models.ValidationError{Field: "categories", Reason: fmt.Sprintf("unknown category %q", id)}
			}
		}
		contact.CategoryIDs = reconcile.MergeIDs(nil, contact.CategoryIDs)
	}

	if len(contact.Fields) > 0 {
		fields, err := s.store.ListFieldDefinitions(ctx)
		if err != nil {
			return &models.StorageError{Op: "list fields", Err: err}
		}
		types := make(map[string]models.FieldType, len(fields))
		for _, f := range fields {
			types[f.ID] = f.Type
		}
		for id, value := range contact.Fields {
			typ, ok := types[id]
			if !ok {
				return &models.ValidationError{Field: "fields", Reason: fmt.Sprintf("unknown field %q", id)}
			}
			value = strings.TrimSpace(value)
			if value == "" {
				delete(contact.Fields, id)
				continue
			}
			if typ == models.FieldTypeDate {
				t, err := codec.ParseBirthday(value)
				if err != nil {
					return &models.ValidationError{Field: "fields", Reason: fmt.Sprintf("field %q expects YYYY-MM-DD", id), Err: err}
				}
				value = t.Format("2006-01-02")
			}
			contact.Fields[id] = value
		}
	}
	return nil
}

// Get retrieves a contact by ID.
func (s *ContactService) Get(ctx context.Context, contactID string) (*models.Contact, error) {
	contact, err := s.store.GetContact(ctx, contactID)
	if err != nil {
		slog.Error("GetContact failed", "contact_id", contactID, "error", err)
		return nil, err
	}
	return contact, nil
}

// List returns contacts matching filter.
func (s *ContactService) List(ctx context.Context, filter models.ContactFilter) ([]*models.Contact, error) {
	contacts, err := s.store.ListContacts(ctx, filter)
	if err != nil {
		slog.Error("ListContacts failed", "error", err)
		return nil, &models.StorageError{Op: "list contacts", Err: err}
	}
	slog.Debug("ListContacts successful", "count", len(contacts))
	return contacts, nil
}

// Delete removes a contact with its links and field values.
func (s *ContactService) Delete(ctx context.Context, contactID string) error {
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.DeleteContact(ctx, contactID)
	})
	if err != nil {
		slog.Warn("DeleteContact failed", "contact_id", contactID, "error", err)
		return err
	}
	refreshContactsGauge(ctx, s.store)
	slog.Info("Contact deleted", "contact_id", contactID)
	return nil
}

// BulkDelete removes every listed contact. Unknown IDs are reported, not
// fatal.
func (s *ContactService) BulkDelete(ctx context.Context, ids []string) (*BulkResult, error) {
	return s.bulk(ctx, "delete", ids, func(ctx context.Context, id string) error {
		return s.store.DeleteContact(ctx, id)
	})
}

// BulkSetActive marks every listed contact active or inactive.
func (s *ContactService) BulkSetActive(ctx context.Context, ids []string, active bool) (*BulkResult, error) {
	return s.bulk(ctx, "set_active", ids, s.edit(func(c *models.Contact) {
		c.IsActive = active
	}))
}

// BulkAssignCategory links every listed contact to the category.
func (s *ContactService) BulkAssignCategory(ctx context.Context, ids []string, categoryID string) (*BulkResult, error) {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.bulk(ctx, "assign_category", ids, s.edit(func(c *models.Contact) {
		c.CategoryIDs = reconcile.MergeIDs(c.CategoryIDs, []string{categoryID})
	}))
}

// BulkUnassignCategory unlinks every listed contact from the category.
func (s *ContactService) BulkUnassignCategory(ctx context.Context, ids []string, categoryID string) (*BulkResult, error) {
	return s.bulk(ctx, "unassign_category", ids, s.edit(func(c *models.Contact) {
		c.CategoryIDs = reconcile.RemoveIDs(c.CategoryIDs, []string{categoryID})
	}))
}

func (s *ContactService) requireCategory(ctx context.Context, categoryID string) error {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return &models.StorageError{Op: "list categories", Err: err}
	}
	for _, c := range categories {
		if c.ID == categoryID {
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", categoryID, models.ErrNotFound)
}

// edit returns a bulk step that loads, modifies and rewrites one contact.
func (s *ContactService) edit(modify func(c *models.Contact)) func(ctx context.Context, id string) error {
	return func(ctx context.Context, id string) error {
		contact, err := s.store.GetContact(ctx, id)
		if err != nil {
			return err
		}
		modify(contact)
		return s.store.UpdateContact(ctx, contact)
	}
}

// bulk applies step to each id under one queue turn. A missing contact is
// recorded and skipped; any other error stops the run.
func (s *ContactService) bulk(ctx context.Context, op string, ids []string, step func(ctx context.Context, id string) error) (*BulkResult, error) {
	slog.Info("Bulk request received", "op", op, "ids_count", len(ids))

	result := &BulkResult{}
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		for _, id := range reconcile.MergeIDs(nil, ids) {
			if err := step(ctx, id); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					result.Missing = append(result.Missing, id)
					continue
				}
				return fmt.Errorf("failed to %s contact %s: %w", op, id, err)
			}
			result.Affected++
		}
		return nil
	})
	if err != nil {
		slog.Error("Bulk operation failed", "op", op, "affected", result.Affected, "error", err)
		return result, err
	}

	if op == "delete" {
		refreshContactsGauge(ctx, s.store)
	}
	slog.Info("Bulk operation completed", "op", op, "affected", result.Affected, "missing", len(result.Missing))
	return result, nil
}

func refreshContactsGauge(ctx context.Context, store storage.ContactStore) {
	contacts, err := store.ListContacts(ctx, models.ContactFilter{})
	if err != nil {
		slog.Debug("Failed to refresh contacts gauge", "error", err)
		return
	}
	metrics.Contacts.Set(float64(len(contacts)))
}
