package reconcile

import (
	"context"
	"errors"

	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/storage"
)

// Rejection is one candidate that was not admitted.
type Rejection struct {
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Summary tallies one import.
type Summary struct {
	Format   string `json:"format"`
	Admitted int    `json:"admitted"`

	// Skipped counts blocks or rows the decoder dropped for lacking a phone.
	Skipped int `json:"skipped"`

	Rejected []Rejection `json:"rejected,omitempty"`
}

// Options tune an import.
type Options struct {
	// CreateFields turns unknown spreadsheet columns into new TEXT field
	// definitions instead of ignoring them.
	CreateFields bool
}

// Importer admits decoded records into a store one by one.
type Importer struct {
	store storage.Store
	opts  Options
}

// NewImporter creates an Importer writing to store.
func NewImporter(store storage.Store, opts Options) *Importer {
	return &Importer{store: store, opts: opts}
}

// Import stores every admissible record. Records rejected for validation or
// a duplicate phone are tallied and skipped. Any other failure aborts with a
// *models.StorageError; records stored before it stay stored, and the partial
// summary is returned alongside the error.
func (im *Importer) Import(ctx context.Context, format string, records []models.Record, skipped int) (*Summary, error) {
	summary := &Summary{Format: format, Skipped: skipped}

	admitter, err := NewAdmitter(ctx, im.store, Policy{})
	if err != nil {
		return summary, &models.StorageError{Op: "load contacts", Err: err}
	}
	resolver, err := NewResolver(ctx, im.store, im.opts.CreateFields)
	if err != nil {
		return summary, &models.StorageError{Op: "load catalog", Err: err}
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return summary, &models.StorageError{Op: "import", Err: err}
		}

		rec := &records[i]
		contact := rec.Contact.Clone()
		contact.ID = ""

		if err := admitter.TryAdmit(contact); err != nil {
			summary.reject(rec.Ref, err)
			continue
		}
		if err := resolver.Resolve(ctx, rec, contact); err != nil {
			return summary, &models.StorageError{Op: "resolve " + rec.Ref, Err: err}
		}
		if err := im.store.CreateContact(ctx, contact); err != nil {
			if models.IsRejection(err) {
				summary.reject(rec.Ref, err)
				continue
			}
			var se *models.StorageError
			if errors.As(err, &se) {
				return summary, err
			}
			return summary, &models.StorageError{Op: "create contact " + rec.Ref, Err: err}
		}

		admitter.Commit(contact)
		summary.Admitted++
	}
	return summary, nil
}

func (s *Summary) reject(ref string, err error) {
	s.Rejected = append(s.Rejected, Rejection{Ref: ref, Reason: err.Error(), Err: err})
}
