// Package codec converts between the record model and external contact
// formats: vCard text, spreadsheet rows (xlsx, csv) and iCalendar birthday
// feeds. Decoders are tolerant: input they cannot use is skipped and counted,
// never fatal. Only unreadable files fail.
package codec

import "github.com/mmynk/contactbook/internal/models"

// Batch is the result of decoding one file.
type Batch struct {
	// Records are the decoded candidates in file order.
	Records []models.Record

	// Skipped counts blocks or rows dropped because they had no phone.
	Skipped int
}
