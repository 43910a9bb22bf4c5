package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mmynk/contactbook/internal/models"
)

// DecodeVCard reads one or more BEGIN:VCARD ... END:VCARD blocks.
// Blocks without a TEL line produce no record and count as skipped.
// Only a read failure is returned as an error.
func DecodeVCard(r io.Reader) (*Batch, error) {
	lines, err := unfoldLines(r)
	if err != nil {
		return nil, &models.ParseError{Source: "vcard", Err: err}
	}

	batch := &Batch{}
	card := 0
	var cur *models.Record
	for _, raw := range lines {
		line := ClassifyLine(raw)
		if line.Kind == LineBegin || cur == nil {
			if line.Kind == LineBegin {
				card++
			}
			cur = &models.Record{
				Contact: models.Contact{IsActive: true},
				Ref:     fmt.Sprintf("card %d", card),
			}
		}

		switch line.Kind {
		case LineName:
			cur.Contact.Name = line.Value
		case LinePhone:
			cur.Contact.Phone = line.Value
		case LineEmail:
			cur.Contact.Email = line.Value
		case LineAddress:
			cur.Contact.Address = line.Value
		case LineBirthday:
			cur.Contact.Birthday = line.Value
		case LineEnd:
			if cur.Contact.Phone == "" {
				batch.Skipped++
			} else {
				batch.Records = append(batch.Records, *cur)
			}
			cur = nil
		}
	}
	return batch, nil
}

// unfoldLines splits r on \n or \r\n and joins RFC 6350 continuation lines
// (those starting with a space or tab) onto the previous line.
func unfoldLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if len(lines) > 0 && line != "" && (line[0] == ' ' || line[0] == '\t') {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// EncodeVCard writes one VERSION:3.0 block per record. EMAIL, ADR and BDAY
// lines appear only when set. Blocks are separated by a blank line with no
// trailing separator.
func EncodeVCard(w io.Writer, records []models.Record) error {
	blocks := make([]string, 0, len(records))
	for _, rec := range records {
		blocks = append(blocks, encodeCard(&rec.Contact))
	}
	_, err := io.WriteString(w, strings.Join(blocks, "\n\n"))
	return err
}

func encodeCard(c *models.Contact) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\n")
	b.WriteString("VERSION:3.0\n")
	b.WriteString("UID:uid-" + oneLine(c.Phone) + "\n")
	b.WriteString("FN:" + oneLine(c.Name) + "\n")
	b.WriteString("TEL:" + oneLine(c.Phone) + "\n")
	if c.Email != "" {
		b.WriteString("EMAIL:" + oneLine(c.Email) + "\n")
	}
	if c.Address != "" {
		b.WriteString("ADR:;;" + escapeText(oneLine(c.Address)) + ";;;;\n")
	}
	if c.Birthday != "" {
		b.WriteString("BDAY:" + oneLine(c.Birthday) + "\n")
	}
	b.WriteString("END:VCARD")
	return b.String()
}

// oneLine replaces line breaks with spaces. Spreadsheet cells may hold
// them, and a raw break would start a new vCard property.
func oneLine(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	return strings.Join(strings.Fields(v), " ")
}
