package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mmynk/contactbook/internal/models"
)

// Format is an external file format.
type Format string

const (
	FormatVCard    Format = "vcf"
	FormatXLSX     Format = "xlsx"
	FormatCSV      Format = "csv"
	FormatCalendar Format = "ics"
	FormatSnapshot Format = "db"
)

// ParseFormat accepts a format name such as "vcf" or "XLSX". "vcard",
// "sqlite" and "ical" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "vcf", "vcard":
		return FormatVCard, nil
	case "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "ics", "ical":
		return FormatCalendar, nil
	case "db", "sqlite", "sqlite3":
		return FormatSnapshot, nil
	}
	return "", &models.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported format %q", s)}
}

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", &models.ValidationError{Field: "format", Reason: fmt.Sprintf("no extension on %q", name)}
	}
	return ParseFormat(ext)
}

// Importable reports whether files of this format can be imported.
// Calendars are export-only.
func (f Format) Importable() bool {
	return f != FormatCalendar
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	switch f {
	case FormatVCard:
		return "text/vcard; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatCalendar:
		return "text/calendar; charset=utf-8"
	case FormatSnapshot:
		return "application/vnd.sqlite3"
	default:
		return "application/octet-stream"
	}
}

// Filename is the default download name for a full export.
func (f Format) Filename() string {
	switch f {
	case FormatCalendar:
		return "birthday_calendar.ics"
	case FormatSnapshot:
		return "contacts_database.db"
	default:
		return "contacts." + string(f)
	}
}
