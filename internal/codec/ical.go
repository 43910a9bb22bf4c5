package codec

import (
	"io"
	"strings"

	"github.com/mmynk/contactbook/internal/models"
)

const calendarProdID = "-//contactbook//Birthdays//EN"

// EncodeBirthdays writes a calendar with one yearly all-day event per
// contact that has a birthday. Contacts without one are left out. A
// birthday that is not a date fails the whole export, naming the contact.
func EncodeBirthdays(w io.Writer, contacts []models.Contact) error {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\n")
	b.WriteString("VERSION:2.0\n")
	b.WriteString("PRODID:" + calendarProdID + "\n")
	for i := range contacts {
		c := &contacts[i]
		if c.Birthday == "" {
			continue
		}
		date, err := CompactBirthday(c.Birthday)
		if err != nil {
			return &models.ParseError{Source: "ics", Ref: c.Name, Value: c.Birthday, Err: err}
		}
		b.WriteString("BEGIN:VEVENT\n")
		b.WriteString("UID:bday-" + c.Phone + "\n")
		b.WriteString("SUMMARY:🎂 " + c.Name + "'s Birthday\n")
		b.WriteString("DTSTART;VALUE=DATE:" + date + "\n")
		b.WriteString("RRULE:FREQ=YEARLY\n")
		b.WriteString("END:VEVENT\n")
	}
	b.WriteString("END:VCALENDAR")

	_, err := io.WriteString(w, b.String())
	return err
}

// CalendarFilename names a single-contact birthday download.
func CalendarFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "contact"
	}
	return name + "_birthday.ics"
}
