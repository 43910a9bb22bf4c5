package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/mmynk/contactbook/internal/codec"
	"github.com/mmynk/contactbook/internal/metrics"
	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/reconcile"
	"github.com/mmynk/contactbook/internal/storage"
)

// maxSnapshotSize bounds database uploads.
const maxSnapshotSize = 256 << 20

// ImportOptions tune TransferService.Import.
type ImportOptions struct {
	// CreateFields turns unknown spreadsheet columns into TEXT fields.
	CreateFields bool
}

// ExportResult describes a finished export.
type ExportResult struct {
	Format  codec.Format `json:"format"`
	Records int          `json:"records"`
}

// TransferService moves contacts between the store and external files.
type TransferService struct {
	store storage.Store
	queue *MutationQueue
}

// NewTransferService creates a new TransferService.
func NewTransferService(store storage.Store, queue *MutationQueue) *TransferService {
	return &TransferService{store: store, queue: queue}
}

// Import reads a file of the given format into the store. Records that fail
// validation or repeat a phone are skipped and reported in the summary. A
// database snapshot replaces the whole store instead; its summary counts the
// contacts it holds as admitted.
func (s *TransferService) Import(ctx context.Context, format codec.Format, r io.Reader, opts ImportOptions) (*reconcile.Summary, error) {
	slog.Info("Import request received", "format", format, "create_fields", opts.CreateFields)

	summary, err := s.doImport(ctx, format, r, opts)
	if err != nil {
		metrics.ImportFailures.WithLabelValues(string(format)).Inc()
		slog.Error("Import failed", "format", format, "error", err)
		if summary != nil {
			recordImport(summary)
		}
		return summary, err
	}

	recordImport(summary)
	for _, rej := range summary.Rejected {
		slog.Debug("Import record rejected", "format", format, "ref", rej.Ref, "reason", rej.Reason)
	}
	slog.Info("Import completed",
		"format", format,
		"admitted", summary.Admitted,
		"rejected", len(summary.Rejected),
		"skipped", summary.Skipped,
	)
	refreshContactsGauge(ctx, s.store)
	return summary, nil
}

func (s *TransferService) doImport(ctx context.Context, format codec.Format, r io.Reader, opts ImportOptions) (*reconcile.Summary, error) {
	if format == codec.FormatSnapshot {
		return s.importSnapshot(ctx, r)
	}

	batch, err := decode(format, r)
	if err != nil {
		return nil, err
	}

	var summary *reconcile.Summary
	err = s.queue.Do(ctx, func(ctx context.Context) error {
		importer := reconcile.NewImporter(s.store, reconcile.Options{CreateFields: opts.CreateFields})
		var err error
		summary, err = importer.Import(ctx, string(format), batch.Records, batch.Skipped)
		return err
	})
	return summary, err
}

func decode(format codec.Format, r io.Reader) (*codec.Batch, error) {
	switch format {
	case codec.FormatVCard:
		return codec.DecodeVCard(r)
	case codec.FormatXLSX:
		header, rows, err := codec.ReadXLSX(r)
		if err != nil {
			return nil, err
		}
		return codec.DecodeRows(codec.RowsToMaps(header, rows)), nil
	case codec.FormatCSV:
		header, rows, err := codec.ReadCSV(r)
		if err != nil {
			return nil, err
		}
		return codec.DecodeRows(codec.RowsToMaps(header, rows)), nil
	default:
		return nil, &models.ValidationError{Field: "format", Reason: fmt.Sprintf("cannot import %q files", format)}
	}
}

func (s *TransferService) importSnapshot(ctx context.Context, r io.Reader) (*reconcile.Summary, error) {
	snap, ok := s.store.(storage.Snapshotter)
	if !ok {
		return nil, &models.ValidationError{Field: "format", Reason: "store does not support database snapshots"}
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSnapshotSize+1))
	if err != nil {
		return nil, &models.ParseError{Source: "snapshot", Err: err}
	}
	if len(data) > maxSnapshotSize {
		return nil, &models.ValidationError{Field: "file", Reason: "snapshot too large"}
	}

	summary := &reconcile.Summary{Format: string(codec.FormatSnapshot)}
	err = s.queue.Do(ctx, func(ctx context.Context) error {
		if err := snap.ImportSnapshot(ctx, data); err != nil {
			return err
		}
		contacts, err := s.store.ListContacts(ctx, models.ContactFilter{})
		if err != nil {
			return &models.StorageError{Op: "count contacts", Err: err}
		}
		summary.Admitted = len(contacts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func recordImport(summary *reconcile.Summary) {
	metrics.ImportedRecords.WithLabelValues(summary.Format, metrics.OutcomeAdmitted).Add(float64(summary.Admitted))
	metrics.ImportedRecords.WithLabelValues(summary.Format, metrics.OutcomeRejected).Add(float64(len(summary.Rejected)))
	metrics.ImportedRecords.WithLabelValues(summary.Format, metrics.OutcomeSkipped).Add(float64(summary.Skipped))
}

// Export writes every contact to w in the given format. The file is built in
// memory first, so w sees nothing when the export fails.
func (s *TransferService) Export(ctx context.Context, format codec.Format, w io.Writer) (*ExportResult, error) {
	slog.Info("Export request received", "format", format)

	var buf bytes.Buffer
	result := &ExportResult{Format: format}
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		n, err := s.encode(ctx, format, &buf)
		result.Records = n
		return err
	})
	if err != nil {
		slog.Error("Export failed", "format", format, "error", err)
		return nil, err
	}

	if _, err := buf.WriteTo(w); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}

	metrics.ExportedRecords.WithLabelValues(string(format)).Add(float64(result.Records))
	slog.Info("Export completed", "format", format, "records", result.Records)
	return result, nil
}

func (s *TransferService) encode(ctx context.Context, format codec.Format, w io.Writer) (int, error) {
	if format == codec.FormatSnapshot {
		snap, ok := s.store.(storage.Snapshotter)
		if !ok {
			return 0, &models.ValidationError{Field: "format", Reason: "store does not support database snapshots"}
		}
		data, err := snap.ExportSnapshot(ctx)
		if err != nil {
			return 0, &models.StorageError{Op: "export snapshot", Err: err}
		}
		contacts, err := s.store.ListContacts(ctx, models.ContactFilter{})
		if err != nil {
			return 0, &models.StorageError{Op: "count contacts", Err: err}
		}
		_, err = w.Write(data)
		return len(contacts), err
	}

	contacts, err := s.store.ListContacts(ctx, models.ContactFilter{})
	if err != nil {
		return 0, &models.StorageError{Op: "list contacts", Err: err}
	}

	switch format {
	case codec.FormatCalendar:
		plain := make([]models.Contact, 0, len(contacts))
		for _, c := range contacts {
			if c.Birthday != "" {
				plain = append(plain, *c)
			}
		}
		return len(plain), codec.EncodeBirthdays(w, plain)
	case codec.FormatVCard, codec.FormatXLSX, codec.FormatCSV:
	default:
		return 0, &models.ValidationError{Field: "format", Reason: fmt.Sprintf("cannot export %q", format)}
	}

	records, fieldNames, err := s.records(ctx, contacts)
	if err != nil {
		return 0, err
	}

	switch format {
	case codec.FormatVCard:
		err = codec.EncodeVCard(w, records)
	case codec.FormatXLSX:
		header, rows := codec.EncodeRows(records, fieldNames)
		err = codec.WriteXLSX(w, header, rows)
	case codec.FormatCSV:
		header, rows := codec.EncodeRows(records, fieldNames)
		err = codec.WriteCSV(w, header, rows)
	}
	return len(records), err
}

// records pairs contacts with their category and field names. fieldNames
// lists every definition, sorted.
func (s *TransferService) records(ctx context.Context, contacts []*models.Contact) ([]models.Record, []string, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, nil, &models.StorageError{Op: "list categories", Err: err}
	}
	fields, err := s.store.ListFieldDefinitions(ctx)
	if err != nil {
		return nil, nil, &models.StorageError{Op: "list fields", Err: err}
	}

	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	fieldNamesByID := make(map[string]string, len(fields))
	fieldNames := make([]string, 0, len(fields))
	for _, f := range fields {
		fieldNamesByID[f.ID] = f.Name
		fieldNames = append(fieldNames, f.Name)
	}
	sort.Strings(fieldNames)

	records := make([]models.Record, 0, len(contacts))
	for _, c := range contacts {
		rec := models.Record{Contact: *c}
		for _, id := range c.CategoryIDs {
			if name, ok := categoryNames[id]; ok {
				rec.Categories = append(rec.Categories, name)
			}
		}
		for id, value := range c.Fields {
			if name, ok := fieldNamesByID[id]; ok {
				if rec.Fields == nil {
					rec.Fields = make(map[string]string)
				}
				rec.Fields[name] = value
			}
		}
		records = append(records, rec)
	}
	return records, fieldNames, nil
}

// ExportBirthday writes a one-event calendar for a single contact and
// returns the suggested file name.
func (s *TransferService) ExportBirthday(ctx context.Context, contactID string, w io.Writer) (string, error) {
	contact, err := s.store.GetContact(ctx, contactID)
	if err != nil {
		return "", err
	}
	if contact.Birthday == "" {
		return "", &models.ValidationError{Field: "birthday", Reason: "not set"}
	}

	var buf bytes.Buffer
	if err := codec.EncodeBirthdays(&buf, []models.Contact{*contact}); err != nil {
		return "", err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return "", fmt.Errorf("failed to write calendar: %w", err)
	}
	metrics.ExportedRecords.WithLabelValues(string(codec.FormatCalendar)).Inc()
	return codec.CalendarFilename(contact.Name), nil
}
