package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/contactbook/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	family := &models.Category{Name: "Family"}
	if err := store.CreateCategory(ctx, family); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	nickname := &models.CustomFieldDefinition{Name: "Nickname"}
	if err := store.CreateFieldDefinition(ctx, nickname); err != nil {
		t.Fatalf("CreateFieldDefinition failed: %v", err)
	}

	t.Run("CreateContact generates ID", func(t *testing.T) {
		contact := models.NewContact("Alice", "111")
		if err := store.CreateContact(ctx, contact); err != nil {
			t.Fatalf("CreateContact failed: %v", err)
		}
		if contact.ID == "" {
			t.Error("Expected contact ID to be generated")
		}
	})

	t.Run("GetContact retrieves side tables", func(t *testing.T) {
		original := &models.Contact{
			Name:        "Bob",
			Phone:       "222",
			Email:       "bob@example.com",
			Address:     "1 Main St",
			Birthday:    "1990-04-01",
			IsActive:    true,
			CategoryIDs: []string{family.ID},
			Fields:      map[string]string{nickname.ID: "Bobby"},
		}
		if err := store.CreateContact(ctx, original); err != nil {
			t.Fatalf("CreateContact failed: %v", err)
		}

		retrieved, err := store.GetContact(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetContact failed: %v", err)
		}
		if retrieved.Name != original.Name || retrieved.Phone != original.Phone {
			t.Errorf("Contact mismatch: got %+v, want %+v", retrieved, original)
		}
		if retrieved.Birthday != "1990-04-01" {
			t.Errorf("Birthday mismatch: got %s", retrieved.Birthday)
		}
		if !retrieved.IsActive {
			t.Error("Expected contact to be active")
		}
		if len(retrieved.CategoryIDs) != 1 || retrieved.CategoryIDs[0] != family.ID {
			t.Errorf("CategoryIDs mismatch: got %v", retrieved.CategoryIDs)
		}
		if retrieved.Fields[nickname.ID] != "Bobby" {
			t.Errorf("Fields mismatch: got %v", retrieved.Fields)
		}
	})

	t.Run("CreateContact rejects duplicate phone", func(t *testing.T) {
		contact := models.NewContact("Alice Again", "111")
		err := store.CreateContact(ctx, contact)

		var dup *models.DuplicateKeyError
		if !errors.As(err, &dup) {
			t.Fatalf("Expected DuplicateKeyError, got %v", err)
		}
		if dup.Value != "111" {
			t.Errorf("Duplicate value: got %s, want 111", dup.Value)
		}
		if contact.ID != "" {
			t.Error("Expected generated ID to be cleared after failed create")
		}
	})

	t.Run("UpdateContact replaces side tables", func(t *testing.T) {
		contact, err := store.FindContactByPhone(ctx, "222")
		if err != nil || contact == nil {
			t.Fatalf("FindContactByPhone failed: %v", err)
		}

		contact.Name = "Robert"
		contact.CategoryIDs = nil
		contact.Fields = map[string]string{nickname.ID: "Rob"}
		if err := store.UpdateContact(ctx, contact); err != nil {
			t.Fatalf("UpdateContact failed: %v", err)
		}

		retrieved, err := store.GetContact(ctx, contact.ID)
		if err != nil {
			t.Fatalf("GetContact failed: %v", err)
		}
		if retrieved.Name != "Robert" {
			t.Errorf("Name: got %s, want Robert", retrieved.Name)
		}
		if len(retrieved.CategoryIDs) != 0 {
			t.Errorf("Expected categories to be cleared, got %v", retrieved.CategoryIDs)
		}
		if len(retrieved.Fields) != 1 || retrieved.Fields[nickname.ID] != "Rob" {
			t.Errorf("Expected single replaced value, got %v", retrieved.Fields)
		}
	})

	t.Run("UpdateContact rejects phone owned by another contact", func(t *testing.T) {
		contact, _ := store.FindContactByPhone(ctx, "222")
		contact.Phone = "111"

		var dup *models.DuplicateKeyError
		if err := store.UpdateContact(ctx, contact); !errors.As(err, &dup) {
			t.Fatalf("Expected DuplicateKeyError, got %v", err)
		}
	})

	t.Run("UpdateContact with unknown category fails", func(t *testing.T) {
		contact, _ := store.FindContactByPhone(ctx, "222")
		contact.CategoryIDs = []string{"missing"}

		if err := store.UpdateContact(ctx, contact); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("FindContactByPhone returns nil for unknown phone", func(t *testing.T) {
		contact, err := store.FindContactByPhone(ctx, "000")
		if err != nil {
			t.Fatalf("FindContactByPhone failed: %v", err)
		}
		if contact != nil {
			t.Errorf("Expected nil contact, got %+v", contact)
		}
	})

	t.Run("GetContact returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetContact(ctx, "nonexistent-id")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateCategory rejects duplicate name", func(t *testing.T) {
		var dup *models.DuplicateKeyError
		if err := store.CreateCategory(ctx, &models.Category{Name: "Family"}); !errors.As(err, &dup) {
			t.Fatalf("Expected DuplicateKeyError, got %v", err)
		}
	})
}

func TestListContacts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	work := &models.Category{Name: "Work"}
	if err := store.CreateCategory(ctx, work); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	contacts := []*models.Contact{
		{Name: "charlie", Phone: "3", IsActive: true},
		{Name: "Alice", Phone: "1", Email: "alice@corp.com", IsActive: true, CategoryIDs: []string{work.ID}},
		{Name: "Bob", Phone: "2", IsActive: false},
		{Name: "Bob", Phone: "0", IsActive: true},
	}
	for _, c := range contacts {
		if err := store.CreateContact(ctx, c); err != nil {
			t.Fatalf("CreateContact failed: %v", err)
		}
	}

	active := true
	inactive := false
	tests := []struct {
		name   string
		filter models.ContactFilter
		want   []string // phones in order
	}{
		{"all ordered by name then phone", models.ContactFilter{}, []string{"1", "0", "2", "3"}},
		{"active only", models.ContactFilter{IsActive: &active}, []string{"1", "0", "3"}},
		{"inactive only", models.ContactFilter{IsActive: &inactive}, []string{"2"}},
		{"by category", models.ContactFilter{CategoryID: work.ID}, []string{"1"}},
		{"query matches name case-insensitively", models.ContactFilter{Query: "CHAR"}, []string{"3"}},
		{"query matches email", models.ContactFilter{Query: "corp"}, []string{"1"}},
		{"query matches phone", models.ContactFilter{Query: "2"}, []string{"2"}},
		{"query treats wildcards literally", models.ContactFilter{Query: "%"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListContacts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListContacts failed: %v", err)
			}
			var phones []string
			for _, c := range got {
				phones = append(phones, c.Phone)
			}
			if len(phones) != len(tt.want) {
				t.Fatalf("ListContacts = %v, want %v", phones, tt.want)
			}
			for i := range phones {
				if phones[i] != tt.want[i] {
					t.Errorf("ListContacts = %v, want %v", phones, tt.want)
					break
				}
			}
		})
	}
}

func TestCascadeDeletes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	category := &models.Category{Name: "Emergency"}
	field := &models.CustomFieldDefinition{Name: "Blood Type"}
	if err := store.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if err := store.CreateFieldDefinition(ctx, field); err != nil {
		t.Fatalf("CreateFieldDefinition failed: %v", err)
	}

	newLinked := func(phone string) *models.Contact {
		c := &models.Contact{
			Name:        "Linked " + phone,
			Phone:       phone,
			IsActive:    true,
			CategoryIDs: []string{category.ID},
			Fields:      map[string]string{field.ID: "O+"},
		}
		if err := store.CreateContact(ctx, c); err != nil {
			t.Fatalf("CreateContact failed: %v", err)
		}
		return c
	}

	countRows := func(query string, args ...any) int {
		var n int
		if err := store.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		return n
	}

	t.Run("deleting a contact removes its links and values", func(t *testing.T) {
		c := newLinked("100")
		if err := store.DeleteContact(ctx, c.ID); err != nil {
			t.Fatalf("DeleteContact failed: %v", err)
		}
		if n := countRows("SELECT COUNT(*) FROM contact_categories WHERE contact_id = ?", c.ID); n != 0 {
			t.Errorf("Expected 0 orphaned links, got %d", n)
		}
		if n := countRows("SELECT COUNT(*) FROM custom_fields_values WHERE contact_id = ?", c.ID); n != 0 {
			t.Errorf("Expected 0 orphaned values, got %d", n)
		}
	})

	t.Run("deleting a category keeps contacts", func(t *testing.T) {
		c := newLinked("200")
		if err := store.DeleteCategory(ctx, category.ID); err != nil {
			t.Fatalf("DeleteCategory failed: %v", err)
		}
		if n := countRows("SELECT COUNT(*) FROM contact_categories WHERE category_id = ?", category.ID); n != 0 {
			t.Errorf("Expected 0 orphaned links, got %d", n)
		}
		retrieved, err := store.GetContact(ctx, c.ID)
		if err != nil {
			t.Fatalf("Expected contact to survive category deletion: %v", err)
		}
		if len(retrieved.CategoryIDs) != 0 {
			t.Errorf("Expected no categories, got %v", retrieved.CategoryIDs)
		}
	})

	t.Run("deleting a field definition removes its values", func(t *testing.T) {
		if err := store.DeleteFieldDefinition(ctx, field.ID); err != nil {
			t.Fatalf("DeleteFieldDefinition failed: %v", err)
		}
		if n := countRows("SELECT COUNT(*) FROM custom_fields_values WHERE field_id = ?", field.ID); n != 0 {
			t.Errorf("Expected 0 orphaned values, got %d", n)
		}
	})

	t.Run("deleting twice reports not found", func(t *testing.T) {
		if err := store.DeleteCategory(ctx, category.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}
