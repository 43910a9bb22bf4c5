package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmynk/contactbook/internal/models"
)

// snapshotCopies copies every snapshot table from the attached "snap"
// database into main. Ids are cast to TEXT so legacy files with integer ids
// load as well. Link and value rows pointing at missing
// contacts, categories or definitions are dropped.
var snapshotCopies = []string{
	`INSERT INTO main.contacts (id, name, phone, email, address, birthday, is_active)
	 SELECT CAST(id AS TEXT), COALESCE(name, ''), phone, COALESCE(email, ''), COALESCE(address, ''),
	        COALESCE(birthday, ''), COALESCE(is_active, 1)
	 FROM snap.contacts`,
	`INSERT INTO main.categories (id, name)
	 SELECT CAST(id AS TEXT), name FROM snap.categories`,
	`INSERT INTO main.custom_fields_definitions (id, field_name, field_type)
	 SELECT CAST(id AS TEXT), field_name, COALESCE(field_type, 'TEXT') FROM snap.custom_fields_definitions`,
	`INSERT OR IGNORE INTO main.contact_categories (contact_id, category_id)
	 SELECT CAST(contact_id AS TEXT), CAST(category_id AS TEXT) FROM snap.contact_categories
	 WHERE contact_id IN (SELECT id FROM snap.contacts)
	   AND category_id IN (SELECT id FROM snap.categories)`,
	`INSERT OR REPLACE INTO main.custom_fields_values (contact_id, field_id, value)
	 SELECT CAST(contact_id AS TEXT), CAST(field_id AS TEXT), COALESCE(value, '') FROM snap.custom_fields_values
	 WHERE contact_id IN (SELECT id FROM snap.contacts)
	   AND field_id IN (SELECT id FROM snap.custom_fields_definitions)
	 ORDER BY rowid`,
}

// ExportSnapshot writes the database into a standalone SQLite file and
// returns its bytes.
func (s *SQLiteStore) ExportSnapshot(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "contactbook-snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// ImportSnapshot replaces every row of the store with the contents of the
// SQLite database in data. The replacement runs in one transaction, so a
// rejected snapshot leaves the store untouched.
func (s *SQLiteStore) ImportSnapshot(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return &models.ParseError{Source: "snapshot", Err: fmt.Errorf("empty file")}
	}

	dir, err := os.MkdirTemp("", "contactbook-restore-*")
	if err != nil {
		return fmt.Errorf("failed to create restore directory: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "restore.db")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to stage snapshot: %w", err)
	}

	// ATTACH is per connection, so pin one for the whole restore.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS snap", path); err != nil {
		return &models.ParseError{Source: "snapshot", Err: err}
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "DETACH DATABASE snap"); err != nil {
			slog.Warn("Failed to detach snapshot", "error", err)
		}
	}()

	if err := checkSnapshotTables(ctx, conn); err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Link and value rows go first; deleting contacts would cascade anyway.
	for i := len(snapshotTables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DELETE FROM main."+snapshotTables[i]); err != nil {
			return fmt.Errorf("failed to clear %s: %w", snapshotTables[i], err)
		}
	}

	for _, stmt := range snapshotCopies {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &models.ParseError{Source: "snapshot", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// checkSnapshotTables verifies the attached file is a database holding every
// table a snapshot needs.
func checkSnapshotTables(ctx context.Context, q querier) error {
	rows, err := q.QueryContext(ctx, "SELECT name FROM snap.sqlite_master WHERE type = 'table'")
	if err != nil {
		return &models.ParseError{Source: "snapshot", Err: err}
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return &models.ParseError{Source: "snapshot", Err: err}
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return &models.ParseError{Source: "snapshot", Err: err}
	}

	for _, table := range snapshotTables {
		if !present[table] {
			return &models.ParseError{Source: "snapshot", Value: table, Err: fmt.Errorf("missing table")}
		}
	}
	return nil
}
