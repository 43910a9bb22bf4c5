package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmynk/contactbook/internal/models"
)

// Export column headers, in order. Custom fields follow as extra columns.
const (
	ColName       = "Name"
	ColPhone      = "Phone"
	ColEmail      = "Email"
	ColAddress    = "Address"
	ColBirthday   = "Birthday"
	ColIsActive   = "Is_Active"
	ColCategories = "Categories"
)

// BaseColumns are the fixed leading columns of a spreadsheet export.
var BaseColumns = []string{ColName, ColPhone, ColEmail, ColAddress, ColBirthday, ColIsActive, ColCategories}

// columnSynonyms lists accepted headers per attribute, normalized by
// normalizeHeader. Earlier synonyms win when a row has several.
var columnSynonyms = map[string][]string{
	ColName:       {"name", "full name"},
	ColPhone:      {"phone", "phone number", "mobile"},
	ColEmail:      {"email", "email address"},
	ColAddress:    {"address"},
	ColBirthday:   {"birthday"},
	ColIsActive:   {"is active", "active"},
	ColCategories: {"categories", "category"},
}

// knownHeaders is the set of every synonym; other columns are custom fields.
var knownHeaders = func() map[string]bool {
	m := make(map[string]bool)
	for _, syns := range columnSynonyms {
		for _, s := range syns {
			m[s] = true
		}
	}
	return m
}()

// IsBuiltinHeader reports whether a column headed h is read as a built-in
// attribute rather than a custom field.
func IsBuiltinHeader(h string) bool {
	return knownHeaders[normalizeHeader(h)]
}

// normalizeHeader lowercases h, treats underscores as spaces and collapses
// whitespace, so "Phone_Number" and "phone number" match.
func normalizeHeader(h string) string {
	h = strings.ReplaceAll(strings.ToLower(h), "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

// DecodeRows turns spreadsheet rows (header -> cell) into records.
// Rows with no phone are skipped. Columns that match no known attribute are
// returned as custom field values keyed by their trimmed header.
func DecodeRows(rows []map[string]string) *Batch {
	batch := &Batch{}
	for i, row := range rows {
		norm := make(map[string]string, len(row))
		blank := true
		for k, v := range row {
			key := normalizeHeader(k)
			v = strings.TrimSpace(v)
			if v != "" {
				blank = false
			}
			if v == "" && norm[key] != "" {
				continue
			}
			norm[key] = v
		}
		if blank {
			// Spacer rows are not data.
			continue
		}

		lookup := func(col string) string {
			for _, syn := range columnSynonyms[col] {
				if v := norm[syn]; v != "" {
					return v
				}
			}
			return ""
		}

		phone := lookup(ColPhone)
		if phone == "" {
			batch.Skipped++
			continue
		}

		rec := models.Record{
			Contact: models.Contact{
				Name:     lookup(ColName),
				Phone:    phone,
				Email:    lookup(ColEmail),
				Address:  lookup(ColAddress),
				Birthday: NormalizeBirthday(lookup(ColBirthday)),
				IsActive: parseActive(lookup(ColIsActive)),
			},
			Categories: splitCategories(lookup(ColCategories)),
			// Header row is row 1.
			Ref: fmt.Sprintf("row %d", i+2),
		}

		for k, v := range row {
			if v = strings.TrimSpace(v); v == "" || knownHeaders[normalizeHeader(k)] {
				continue
			}
			if rec.Fields == nil {
				rec.Fields = make(map[string]string)
			}
			rec.Fields[strings.TrimSpace(k)] = v
		}

		batch.Records = append(batch.Records, rec)
	}
	return batch
}

// parseActive reads an Is_Active cell. Empty or unrecognized values mean
// active, matching the contact default.
func parseActive(v string) bool {
	switch strings.ToLower(v) {
	case "false", "no", "0", "n", "inactive":
		return false
	default:
		return true
	}
}

func splitCategories(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, name := range strings.Split(v, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// EncodeRows lays records out as a header plus one row per record.
// fieldNames adds one trailing column per custom field definition.
func EncodeRows(records []models.Record, fieldNames []string) ([]string, [][]string) {
	header := append(append([]string(nil), BaseColumns...), fieldNames...)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		c := rec.Contact
		categories := append([]string(nil), rec.Categories...)
		sort.Strings(categories)

		row := []string{
			c.Name,
			c.Phone,
			c.Email,
			c.Address,
			c.Birthday,
			fmt.Sprintf("%t", c.IsActive),
			strings.Join(categories, ", "),
		}
		for _, name := range fieldNames {
			row = append(row, rec.Fields[name])
		}
		rows = append(rows, row)
	}
	return header, rows
}

// RowsToMaps pairs each data row with the header. Missing trailing cells
// read as empty; columns with a blank header are dropped.
func RowsToMaps(header []string, rows [][]string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]string, len(header))
		for i, h := range header {
			if strings.TrimSpace(h) == "" {
				continue
			}
			if i < len(row) {
				m[h] = row[i]
			} else {
				m[h] = ""
			}
		}
		out = append(out, m)
	}
	return out
}
