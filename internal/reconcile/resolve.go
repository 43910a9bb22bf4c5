package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/contactbook/internal/codec"
	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/storage"
)

// catalog is the part of the store the resolver writes to.
type catalog interface {
	storage.CategoryStore
	storage.FieldStore
}

// Resolver turns the category and field names on a record into store ids.
type Resolver struct {
	store        catalog
	createFields bool

	categories map[string]string // name -> ID
	fields     map[string]string // name -> ID
	dates      map[string]bool   // IDs of DATE fields
}

// NewResolver loads the current categories and field definitions.
// With createFields set, unknown field names become new TEXT definitions;
// otherwise their values are dropped.
func NewResolver(ctx context.Context, store catalog, createFields bool) (*Resolver, error) {
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	fields, err := store.ListFieldDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list field definitions: %w", err)
	}

	r := &Resolver{
		store:        store,
		createFields: createFields,
		categories:   make(map[string]string, len(categories)),
		fields:       make(map[string]string, len(fields)),
		dates:        make(map[string]bool),
	}
	for _, c := range categories {
		r.categories[c.Name] = c.ID
	}
	for _, f := range fields {
		r.fields[f.Name] = f.ID
		if f.Type == models.FieldTypeDate {
			r.dates[f.ID] = true
		}
	}
	return r, nil
}

// Resolve fills contact.CategoryIDs and contact.Fields from rec. Missing
// categories are created. DATE field values are normalized like birthdays.
func (r *Resolver) Resolve(ctx context.Context, rec *models.Record, contact *models.Contact) error {
	contact.CategoryIDs = nil
	for _, name := range rec.Categories {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, ok := r.categories[name]
		if !ok {
			category := &models.Category{Name: name}
			if err := r.store.CreateCategory(ctx, category); err != nil {
				return fmt.Errorf("failed to create category %q: %w", name, err)
			}
			id = category.ID
			r.categories[name] = id
		}
		contact.CategoryIDs = MergeIDs(contact.CategoryIDs, []string{id})
	}

	contact.Fields = nil
	for name, value := range rec.Fields {
		if value == "" {
			continue
		}
		id, ok := r.fields[name]
		if !ok {
			if !r.createFields {
				continue
			}
			field := &models.CustomFieldDefinition{Name: name, Type: models.FieldTypeText}
			if err := r.store.CreateFieldDefinition(ctx, field); err != nil {
				return fmt.Errorf("failed to create field %q: %w", name, err)
			}
			id = field.ID
			r.fields[name] = id
		}
		if r.dates[id] {
			value = codec.NormalizeBirthday(value)
		}
		if contact.Fields == nil {
			contact.Fields = make(map[string]string)
		}
		contact.Fields[id] = value
	}
	return nil
}
