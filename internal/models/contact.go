package models

// Contact represents a person in the address book.
type Contact struct {
	// ID is the unique identifier for the contact (UUID format).
	// Assigned by the store on creation.
	ID string

	// Name is the display name. Required for form saves, may be empty
	// for imported contacts.
	Name string

	// Phone is the dedup key. It is required and unique across the store,
	// compared as an exact string.
	Phone string

	Email   string
	Address string

	// Birthday is stored as YYYY-MM-DD when the source value could be
	// parsed as a date. Unparseable imported values are kept verbatim.
	Birthday string

	// IsActive marks the contact as active. Defaults to true.
	IsActive bool

	// CategoryIDs lists the categories assigned to this contact.
	// Saving a contact replaces the full set.
	CategoryIDs []string

	// Fields maps custom field definition ID to value.
	// Saving a contact replaces the full set.
	Fields map[string]string
}

// NewContact returns an active contact with the given name and phone.
func NewContact(name, phone string) *Contact {
	return &Contact{
		Name:     name,
		Phone:    phone,
		IsActive: true,
	}
}

// HasCategory reports whether the contact is linked to categoryID.
func (c *Contact) HasCategory(categoryID string) bool {
	for _, id := range c.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the contact.
func (c *Contact) Clone() *Contact {
	out := *c
	if c.CategoryIDs != nil {
		out.CategoryIDs = append([]string(nil), c.CategoryIDs...)
	}
	if c.Fields != nil {
		out.Fields = make(map[string]string, len(c.Fields))
		for k, v := range c.Fields {
			out.Fields[k] = v
		}
	}
	return &out
}

// ContactFilter narrows ListContacts results. Zero values match everything.
type ContactFilter struct {
	// IsActive restricts to active (true) or inactive (false) contacts.
	IsActive *bool

	// CategoryID restricts to contacts linked to the category.
	CategoryID string

	// Query matches a case-insensitive substring of name or email,
	// or a substring of phone.
	Query string
}

// Record is a contact together with its side-table assignments keyed by
// name. Codecs produce and consume records; the import engine resolves the
// names to store ids.
type Record struct {
	Contact Contact

	// Categories holds category names.
	Categories []string

	// Fields maps custom field name to value.
	Fields map[string]string

	// Ref identifies where the record came from, e.g. "card 3" or "row 7".
	Ref string
}
