package reconcile

import (
	"errors"
	"testing"

	"github.com/mmynk/contactbook/internal/models"
)

func TestTryAdmit(t *testing.T) {
	seen := PhoneSet{"111": "a", "222": "b"}

	tests := []struct {
		name      string
		candidate *models.Contact
		policy    Policy
		wantErr   error
	}{
		{
			name:      "new phone is accepted",
			candidate: &models.Contact{Name: "New", Phone: "333"},
		},
		{
			name:      "import accepts missing name",
			candidate: &models.Contact{Phone: "333"},
		},
		{
			name:      "form save requires name",
			candidate: &models.Contact{Name: "  ", Phone: "333"},
			policy:    Policy{RequireName: true},
			wantErr:   &models.ValidationError{},
		},
		{
			name:      "phone is always required",
			candidate: &models.Contact{Name: "No Phone", Phone: " "},
			wantErr:   &models.ValidationError{},
		},
		{
			name:      "taken phone is rejected",
			candidate: &models.Contact{Name: "Dup", Phone: "111"},
			wantErr:   &models.DuplicateKeyError{},
		},
		{
			name:      "editing keeps own phone",
			candidate: &models.Contact{ID: "a", Name: "Renamed", Phone: "111"},
			policy:    Policy{RequireName: true, SelfID: "a"},
		},
		{
			name:      "editing onto another contact's phone",
			candidate: &models.Contact{ID: "a", Name: "A", Phone: "222"},
			policy:    Policy{RequireName: true, SelfID: "a"},
			wantErr:   &models.DuplicateKeyError{},
		},
		{
			name:      "phones compare exactly",
			candidate: &models.Contact{Name: "Spaced", Phone: "111 "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TryAdmit(tt.candidate, seen, tt.policy)
			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Errorf("expected admission, got %v", err)
				}
			case *models.ValidationError:
				if !errors.As(err, &want) {
					t.Errorf("expected ValidationError, got %v", err)
				}
			case *models.DuplicateKeyError:
				if !errors.As(err, &want) {
					t.Errorf("expected DuplicateKeyError, got %v", err)
				} else if want.Value != tt.candidate.Phone {
					t.Errorf("duplicate value = %q, want %q", want.Value, tt.candidate.Phone)
				}
			}
		})
	}
}

func TestMergeAndRemoveIDs(t *testing.T) {
	merged := MergeIDs([]string{"a", "b"}, []string{"b", "c", "", "c"})
	if len(merged) != 3 || merged[0] != "a" || merged[1] != "b" || merged[2] != "c" {
		t.Errorf("MergeIDs = %v, want [a b c]", merged)
	}

	removed := RemoveIDs([]string{"a", "b", "c"}, []string{"b", "z"})
	if len(removed) != 2 || removed[0] != "a" || removed[1] != "c" {
		t.Errorf("RemoveIDs = %v, want [a c]", removed)
	}

	if got := RemoveIDs(nil, []string{"a"}); len(got) != 0 {
		t.Errorf("RemoveIDs(nil) = %v, want empty", got)
	}
}
