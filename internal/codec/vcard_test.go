package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/contactbook/internal/models"
)

func TestDecodeVCard(t *testing.T) {
	t.Run("single card", func(t *testing.T) {
		in := "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nTEL:555-1234\nEMAIL:jane@x.com\nEND:VCARD"
		batch, err := DecodeVCard(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, batch.Records, 1)
		assert.Equal(t, 0, batch.Skipped)

		c := batch.Records[0].Contact
		assert.Equal(t, "Jane Doe", c.Name)
		assert.Equal(t, "555-1234", c.Phone)
		assert.Equal(t, "jane@x.com", c.Email)
		assert.True(t, c.IsActive)
		assert.Equal(t, "card 1", batch.Records[0].Ref)
	})

	t.Run("crlf folding and skipped blocks", func(t *testing.T) {
		in := strings.Join([]string{
			"BEGIN:VCARD",
			"FN:No Phone",
			"END:VCARD",
			"BEGIN:VCARD",
			"FN:Folded",
			" Name",
			"TEL;TYPE=CELL:777",
			"ADR:;;1 Long;;Road",
			"BDAY:20000101",
			"X-CUSTOM:ignored",
			"END:VCARD",
			"",
		}, "\r\n")
		batch, err := DecodeVCard(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, 1, batch.Skipped)
		require.Len(t, batch.Records, 1)

		rec := batch.Records[0]
		assert.Equal(t, "card 2", rec.Ref)
		assert.Equal(t, "FoldedName", rec.Contact.Name)
		assert.Equal(t, "777", rec.Contact.Phone)
		assert.Equal(t, "1 Long Road", rec.Contact.Address)
		assert.Equal(t, "2000-01-01", rec.Contact.Birthday)
	})

	t.Run("last phone wins", func(t *testing.T) {
		in := "BEGIN:VCARD\nTEL:1\nTEL:2\nEND:VCARD"
		batch, err := DecodeVCard(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, batch.Records, 1)
		assert.Equal(t, "2", batch.Records[0].Contact.Phone)
	})

	t.Run("unterminated block is dropped", func(t *testing.T) {
		batch, err := DecodeVCard(strings.NewReader("BEGIN:VCARD\nTEL:1\n"))
		require.NoError(t, err)
		assert.Empty(t, batch.Records)
	})

	t.Run("empty input", func(t *testing.T) {
		batch, err := DecodeVCard(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, batch.Records)
		assert.Zero(t, batch.Skipped)
	})
}

func TestEncodeVCard(t *testing.T) {
	records := []models.Record{
		{Contact: models.Contact{Name: "Jane Doe", Phone: "555-1234", Email: "jane@x.com", Birthday: "1985-12-24"}},
		{Contact: models.Contact{Name: "Bob", Phone: "999", Address: "1 Main St"}},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeVCard(&buf, records))

	want := "BEGIN:VCARD\nVERSION:3.0\nUID:uid-555-1234\nFN:Jane Doe\nTEL:555-1234\nEMAIL:jane@x.com\nBDAY:1985-12-24\nEND:VCARD" +
		"\n\n" +
		"BEGIN:VCARD\nVERSION:3.0\nUID:uid-999\nFN:Bob\nTEL:999\nADR:;;1 Main St;;;;\nEND:VCARD"
	assert.Equal(t, want, buf.String())
}

func TestEncodeVCardKeepsOneLinePerProperty(t *testing.T) {
	records := []models.Record{
		{Contact: models.Contact{Name: "Ann\nEND:VCARD", Phone: "7", Address: "Flat 2;\r\nHigh St"}},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeVCard(&buf, records))

	want := "BEGIN:VCARD\nVERSION:3.0\nUID:uid-7\nFN:Ann END:VCARD\nTEL:7\nADR:;;Flat 2\\; High St;;;;\nEND:VCARD"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 1, strings.Count(buf.String(), "\nEND:VCARD"))
}

func TestVCardRoundTrip(t *testing.T) {
	in := []models.Record{
		{Contact: models.Contact{Name: "Jane Doe", Phone: "555-1234", Email: "jane@x.com", Address: "12 Main St Springfield", Birthday: "1985-12-24", IsActive: true}},
		{Contact: models.Contact{Name: "Raw Birthday", Phone: "1", Birthday: "next tuesday", IsActive: true}},
		{Contact: models.Contact{Name: "Flat", Phone: "2", Address: "Flat 2; 10 High St, Leeds", IsActive: true}},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeVCard(&buf, in))
	batch, err := DecodeVCard(&buf)
	require.NoError(t, err)
	require.Len(t, batch.Records, len(in))

	for i := range in {
		assert.Equal(t, in[i].Contact, batch.Records[i].Contact)
	}
}

func TestEncodeBirthdays(t *testing.T) {
	contacts := []models.Contact{
		{Name: "Jane", Phone: "1", Birthday: "1985-12-24"},
		{Name: "NoDate", Phone: "2"},
		{Name: "Compact", Phone: "3", Birthday: "20000229"},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeBirthdays(&buf, contacts))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\nVERSION:2.0\n"))
	assert.True(t, strings.HasSuffix(out, "END:VEVENT\nEND:VCALENDAR"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "SUMMARY:🎂 Jane's Birthday\nDTSTART;VALUE=DATE:19851224\nRRULE:FREQ=YEARLY\n")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20000229")
	assert.NotContains(t, out, "NoDate")

	err := EncodeBirthdays(&bytes.Buffer{}, []models.Contact{{Name: "Vague", Birthday: "spring"}})
	var pe *models.ParseError
	require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
	assert.Equal(t, "Vague", pe.Ref)
}

func TestCalendarFilename(t *testing.T) {
	assert.Equal(t, "Jane Doe_birthday.ics", CalendarFilename("Jane Doe"))
	assert.Equal(t, "a_b_birthday.ics", CalendarFilename("a/b"))
	assert.Equal(t, "contact_birthday.ics", CalendarFilename("  "))
}
