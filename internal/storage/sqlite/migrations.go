package sqlite

import (
	"context"
	"database/sql"
)

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Table names match the legacy contact manager so its exported .db files
// can be imported as snapshots.
// IMPORTANT: contacts, categories and definitions must be created BEFORE the
// link and value tables due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS contacts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    birthday TEXT NOT NULL DEFAULT '',
    is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS contact_categories (
    contact_id TEXT NOT NULL,
    category_id TEXT NOT NULL,
    PRIMARY KEY (contact_id, category_id),
    FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE,
    FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS custom_fields_definitions (
    id TEXT PRIMARY KEY,
    field_name TEXT NOT NULL UNIQUE,
    field_type TEXT NOT NULL DEFAULT 'TEXT'
);

CREATE TABLE IF NOT EXISTS custom_fields_values (
    contact_id TEXT NOT NULL,
    field_id TEXT NOT NULL,
    value TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (contact_id, field_id),
    FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE,
    FOREIGN KEY (field_id) REFERENCES custom_fields_definitions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
CREATE INDEX IF NOT EXISTS idx_contact_categories_category_id ON contact_categories(category_id);
CREATE INDEX IF NOT EXISTS idx_custom_fields_values_field_id ON custom_fields_values(field_id);
`

// snapshotTables lists the tables a snapshot must contain, in insert order.
var snapshotTables = []string{
	"contacts",
	"categories",
	"custom_fields_definitions",
	"contact_categories",
	"custom_fields_values",
}

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
