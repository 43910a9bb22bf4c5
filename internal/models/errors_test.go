package models

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestIsRejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation", &ValidationError{Field: "name", Reason: "required"}, true},
		{"duplicate", &DuplicateKeyError{Entity: "contact", Field: "phone", Value: "1"}, true},
		{"wrapped duplicate", fmt.Errorf("save: %w", &DuplicateKeyError{}), true},
		{"not found", ErrNotFound, false},
		{"parse", &ParseError{Source: "csv", Err: io.ErrUnexpectedEOF}, false},
		{"storage", &StorageError{Op: "insert", Err: errors.New("disk full")}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRejection(tt.err); got != tt.want {
				t.Errorf("IsRejection(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ValidationError{Field: "phone", Reason: "required"}, "invalid phone: required"},
		{&DuplicateKeyError{Entity: "contact", Field: "phone", Value: "555"}, `duplicate contact phone: "555"`},
		{&ParseError{Source: "xlsx"}, "parse xlsx"},
		{&ParseError{Source: "ics", Ref: "Jane", Value: "spring", Err: errors.New("bad date")}, `parse ics (Jane): "spring": bad date`},
		{&StorageError{Op: "list contacts", Err: errors.New("locked")}, "storage: list contacts: locked"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	se := &StorageError{Op: "import", Err: fmt.Errorf("contact x: %w", ErrNotFound)}
	if !errors.Is(se, ErrNotFound) {
		t.Error("StorageError should unwrap to its cause")
	}

	pe := &ParseError{Source: "csv", Err: io.ErrUnexpectedEOF}
	if !errors.Is(pe, io.ErrUnexpectedEOF) {
		t.Error("ParseError should unwrap to its cause")
	}
}

func TestContactClone(t *testing.T) {
	c := &Contact{ID: "1", Phone: "1", CategoryIDs: []string{"a"}, Fields: map[string]string{"f": "v"}}
	cp := c.Clone()
	cp.CategoryIDs[0] = "b"
	cp.Fields["f"] = "w"

	if c.CategoryIDs[0] != "a" || c.Fields["f"] != "v" {
		t.Errorf("Clone shares state with the original: %+v", c)
	}
	if !cp.HasCategory("b") || cp.HasCategory("a") {
		t.Errorf("HasCategory mismatch on clone: %v", cp.CategoryIDs)
	}
}
