package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a contact, category or field definition does
// not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or invalid required field. Err, when
// set, is the underlying cause such as a *ParseError for a malformed date.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DuplicateKeyError reports a uniqueness violation, e.g. a phone number that
// already belongs to another contact.
type DuplicateKeyError struct {
	Entity string
	Field  string
	Value  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %s: %q", e.Entity, e.Field, e.Value)
}

// ParseError reports unreadable input: a malformed date or a file that does
// not have the expected structure.
type ParseError struct {
	// Source names the input format or file, e.g. "vcard" or "xlsx".
	Source string

	// Ref identifies the offending record, e.g. "row 4" or a contact name.
	Ref string

	Value string
	Err   error
}

func (e *ParseError) Error() string {
	msg := "parse " + e.Source
	if e.Ref != "" {
		msg += " (" + e.Ref + ")"
	}
	if e.Value != "" {
		msg += fmt.Sprintf(": %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError reports a failed store operation. Bulk imports abort on it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsRejection reports whether err is a per-record data error (validation or
// duplicate key) that bulk operations skip instead of aborting on.
func IsRejection(err error) bool {
	var ve *ValidationError
	var de *DuplicateKeyError
	return errors.As(err, &ve) || errors.As(err, &de)
}
