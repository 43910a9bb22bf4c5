// Package models defines the core domain models for contactbook.
//
// # Entities
//
//   - Contact: a person identified by a unique phone number
//   - Category: a named tag; contacts link to categories many-to-many
//   - CustomFieldDefinition: a user-defined extra column (TEXT or DATE)
//   - CustomFieldValue: one value per (contact, field definition) pair
//
// # Records
//
// Record is the shape exchanged with external formats (vCard, spreadsheets).
// It carries a Contact plus its category and custom field assignments keyed
// by name rather than by id, since files know nothing about store ids.
//
// # Relationships
//
// Relationships use ID strings instead of pointers. A Contact holds the ids
// of its categories and a map of field definition id to value. Stores keep
// these side tables consistent with cascade deletes:
//  1. Deleting a contact removes its category links and field values
//  2. Deleting a category removes its links, never the contacts
//  3. Deleting a field definition removes its values
package models
