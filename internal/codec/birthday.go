package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/contactbook/internal/models"
)

const (
	isoDate     = "2006-01-02"
	compactDate = "20060102"
)

// NormalizeBirthday converts YYYY-MM-DD and compact YYYYMMDD dates to the
// canonical YYYY-MM-DD form. Any other non-empty text is returned trimmed but
// otherwise unchanged, so imports never invent a date.
func NormalizeBirthday(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := parseDate(s); err == nil {
		return t.Format(isoDate)
	}
	return s
}

// ParseBirthday parses a stored birthday. It accepts the canonical and the
// compact layout and reports anything else as a *models.ParseError.
func ParseBirthday(s string) (time.Time, error) {
	t, err := parseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &models.ParseError{Source: "birthday", Value: s, Err: err}
	}
	return t, nil
}

// CompactBirthday formats a stored birthday as YYYYMMDD for calendar events.
func CompactBirthday(s string) (string, error) {
	t, err := ParseBirthday(s)
	if err != nil {
		return "", err
	}
	return t.Format(compactDate), nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{isoDate, compactDate} {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or YYYYMMDD")
}
