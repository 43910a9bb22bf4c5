package memory

import (
	"context"
	"fmt"

	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/storage"
)

// CopyOf returns a new Store holding the same categories, field definitions
// and contacts as src, ids included. Imports run against the copy report
// what they would do without touching src.
func CopyOf(ctx context.Context, src storage.Store) (*Store, error) {
	categories, err := src.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to copy categories: %w", err)
	}
	fields, err := src.ListFieldDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to copy field definitions: %w", err)
	}
	contacts, err := src.ListContacts(ctx, models.ContactFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to copy contacts: %w", err)
	}

	dst := New()
	for _, c := range categories {
		cp := *c
		dst.categories[cp.ID] = &cp
	}
	for _, f := range fields {
		cp := *f
		dst.fields[cp.ID] = &cp
	}
	for _, c := range contacts {
		dst.contacts[c.ID] = normalized(c)
		dst.phones[c.Phone] = c.ID
	}
	return dst, nil
}
