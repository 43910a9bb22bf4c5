package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/contactbook/internal/models"
)

const contactColumns = "id, name, phone, email, address, birthday, is_active"

// sideTableChunk bounds the number of ids bound into one IN clause.
const sideTableChunk = 500

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	c := &models.Contact{}
	var active int
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Birthday, &active); err != nil {
		return nil, err
	}
	c.IsActive = active != 0
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateContact persists a new contact with its category links and field values.
func (s *SQLiteStore) CreateContact(ctx context.Context, contact *models.Contact) (err error) {
	// Generate ID if not set
	if contact.ID == "" {
		contact.ID = uuid.New().String()
		defer func() {
			if err != nil {
				contact.ID = ""
			}
		}()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO contacts ("+contactColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		contact.ID, contact.Name, contact.Phone, contact.Email, contact.Address, contact.Birthday,
		boolToInt(contact.IsActive),
	)
	if isUniqueViolation(err) {
		return &models.DuplicateKeyError{Entity: "contact", Field: "phone", Value: contact.Phone}
	}
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	if err := replaceSideTables(ctx, tx, contact); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateContact overwrites the contact row and replaces its side tables.
func (s *SQLiteStore) UpdateContact(ctx context.Context, contact *models.Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE contacts SET name = ?, phone = ?, email = ?, address = ?, birthday = ?, is_active = ?
		 WHERE id = ?`,
		contact.Name, contact.Phone, contact.Email, contact.Address, contact.Birthday,
		boolToInt(contact.IsActive), contact.ID,
	)
	if isUniqueViolation(err) {
		return &models.DuplicateKeyError{Entity: "contact", Field: "phone", Value: contact.Phone}
	}
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("contact %s: %w", contact.ID, models.ErrNotFound)
	}

	if err := replaceSideTables(ctx, tx, contact); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// replaceSideTables deletes every category link and field value of the
// contact and inserts the contact's current sets.
func replaceSideTables(ctx context.Context, q querier, contact *models.Contact) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM contact_categories WHERE contact_id = ?", contact.ID); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}
	if _, err := q.ExecContext(ctx, "DELETE FROM custom_fields_values WHERE contact_id = ?", contact.ID); err != nil {
		return fmt.Errorf("failed to clear field values: %w", err)
	}

	for _, categoryID := range contact.CategoryIDs {
		_, err := q.ExecContext(ctx,
			"INSERT OR IGNORE INTO contact_categories (contact_id, category_id) VALUES (?, ?)",
			contact.ID, categoryID,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("category %s: %w", categoryID, models.ErrNotFound)
			}
			return fmt.Errorf("failed to link category: %w", err)
		}
	}

	for fieldID, value := range contact.Fields {
		if value == "" {
			continue
		}
		_, err := q.ExecContext(ctx,
			"INSERT INTO custom_fields_values (contact_id, field_id, value) VALUES (?, ?, ?)",
			contact.ID, fieldID, value,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("field %s: %w", fieldID, models.ErrNotFound)
			}
			return fmt.Errorf("failed to insert field value: %w", err)
		}
	}

	return nil
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// GetContact retrieves a contact by ID, including category links and field values.
func (s *SQLiteStore) GetContact(ctx context.Context, contactID string) (*models.Contact, error) {
	contact, err := scanContact(s.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = ?",
		contactID,
	))
	if isNoRows(err) {
		return nil, fmt.Errorf("contact %s: %w", contactID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if err := loadSideTables(ctx, s.db, []*models.Contact{contact}); err != nil {
		return nil, err
	}
	return contact, nil
}

// FindContactByPhone retrieves the contact owning phone.
func (s *SQLiteStore) FindContactByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	contact, err := scanContact(s.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE phone = ?",
		phone,
	))
	if isNoRows(err) {
		return nil, nil // Contact not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact by phone: %w", err)
	}

	if err := loadSideTables(ctx, s.db, []*models.Contact{contact}); err != nil {
		return nil, err
	}
	return contact, nil
}

// DeleteContact removes a contact. Links and values go with it through
// ON DELETE CASCADE.
func (s *SQLiteStore) DeleteContact(ctx context.Context, contactID string) error {
	return deleteByID(ctx, s.db, "contacts", "contact", contactID)
}

// ListContacts retrieves contacts matching filter ordered by name.
func (s *SQLiteStore) ListContacts(ctx context.Context, filter models.ContactFilter) ([]*models.Contact, error) {
	var (
		where []string
		args  []any
	)
	if filter.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, boolToInt(*filter.IsActive))
	}
	if filter.CategoryID != "" {
		where = append(where, "id IN (SELECT contact_id FROM contact_categories WHERE category_id = ?)")
		args = append(args, filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, "%"+escapeLike(q)+"%")
	}

	query := "SELECT " + contactColumns + " FROM contacts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, phone"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}
	// The store holds a single connection; release it before loading side tables.
	rows.Close()

	if err := loadSideTables(ctx, s.db, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// loadSideTables fills CategoryIDs and Fields of the given contacts.
func loadSideTables(ctx context.Context, q querier, contacts []*models.Contact) error {
	byID := make(map[string]*models.Contact, len(contacts))
	ids := make([]any, 0, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	for start := 0; start < len(ids); start += sideTableChunk {
		chunk := ids[start:min(start+sideTableChunk, len(ids))]
		in := "(?" + repeatPlaceholder(len(chunk)-1) + ")"

		if err := loadCategoryLinks(ctx, q, in, chunk, byID); err != nil {
			return err
		}
		if err := loadFieldValues(ctx, q, in, chunk, byID); err != nil {
			return err
		}
	}
	return nil
}

func loadCategoryLinks(ctx context.Context, q querier, in string, ids []any, byID map[string]*models.Contact) error {
	rows, err := q.QueryContext(ctx,
		"SELECT contact_id, category_id FROM contact_categories WHERE contact_id IN "+in+" ORDER BY contact_id, category_id",
		ids...,
	)
	if err != nil {
		return fmt.Errorf("failed to get category links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contactID, categoryID string
		if err := rows.Scan(&contactID, &categoryID); err != nil {
			return fmt.Errorf("failed to scan category link: %w", err)
		}
		if c, ok := byID[contactID]; ok {
			c.CategoryIDs = append(c.CategoryIDs, categoryID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate category links: %w", err)
	}
	return nil
}

func loadFieldValues(ctx context.Context, q querier, in string, ids []any, byID map[string]*models.Contact) error {
	rows, err := q.QueryContext(ctx,
		"SELECT contact_id, field_id, value FROM custom_fields_values WHERE contact_id IN "+in,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("failed to get field values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fv models.CustomFieldValue
		if err := rows.Scan(&fv.ContactID, &fv.FieldID, &fv.Value); err != nil {
			return fmt.Errorf("failed to scan field value: %w", err)
		}
		c, ok := byID[fv.ContactID]
		if !ok {
			continue
		}
		if c.Fields == nil {
			c.Fields = make(map[string]string)
		}
		c.Fields[fv.FieldID] = fv.Value
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate field values: %w", err)
	}
	return nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}
