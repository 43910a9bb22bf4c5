// Package reconcile decides which candidate contacts may enter the store and
// drives bulk imports. Phone is the dedup key: two contacts never share one.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/storage"
)

// PhoneSet maps each taken phone to the ID of the contact that owns it.
// Phones are compared as exact strings.
type PhoneSet map[string]string

// Policy controls admission checks.
type Policy struct {
	// RequireName rejects candidates without a name. Form saves set it;
	// imports do not.
	RequireName bool

	// SelfID is the ID of the contact being edited. Its own phone is not
	// a collision.
	SelfID string
}

// TryAdmit checks candidate against the taken phones. It returns nil when the
// candidate may be stored, *models.ValidationError when a required field is
// empty and *models.DuplicateKeyError when another contact owns the phone.
func TryAdmit(candidate *models.Contact, seen PhoneSet, policy Policy) error {
	if strings.TrimSpace(candidate.Phone) == "" {
		return &models.ValidationError{Field: "phone", Reason: "required"}
	}
	if policy.RequireName && strings.TrimSpace(candidate.Name) == "" {
		return &models.ValidationError{Field: "name", Reason: "required"}
	}
	if owner, taken := seen[candidate.Phone]; taken && (policy.SelfID == "" || owner != policy.SelfID) {
		return &models.DuplicateKeyError{Entity: "contact", Field: "phone", Value: candidate.Phone}
	}
	return nil
}

// LoadPhoneSet builds a PhoneSet from every contact in the store.
func LoadPhoneSet(ctx context.Context, store storage.ContactStore) (PhoneSet, error) {
	contacts, err := store.ListContacts(ctx, models.ContactFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load phones: %w", err)
	}
	seen := make(PhoneSet, len(contacts))
	for _, c := range contacts {
		seen[c.Phone] = c.ID
	}
	return seen, nil
}

// Admitter runs TryAdmit against a set that grows as candidates are stored,
// so a file that repeats a phone only admits the first occurrence.
type Admitter struct {
	seen   PhoneSet
	policy Policy
}

// NewAdmitter seeds an Admitter with the phones already in the store.
func NewAdmitter(ctx context.Context, store storage.ContactStore, policy Policy) (*Admitter, error) {
	seen, err := LoadPhoneSet(ctx, store)
	if err != nil {
		return nil, err
	}
	return &Admitter{seen: seen, policy: policy}, nil
}

// TryAdmit checks candidate without recording it.
func (a *Admitter) TryAdmit(candidate *models.Contact) error {
	return TryAdmit(candidate, a.seen, a.policy)
}

// Commit records a stored contact's phone. Call it only after the store
// write succeeded.
func (a *Admitter) Commit(stored *models.Contact) {
	a.seen[stored.Phone] = stored.ID
}

// MergeIDs returns existing plus every id in add that it lacks, in order.
func MergeIDs(existing, add []string) []string {
	out := make([]string, 0, len(existing)+len(add))
	seen := make(map[string]bool, len(existing)+len(add))
	for _, ids := range [][]string{existing, add} {
		for _, id := range ids {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// RemoveIDs returns existing without any id in remove.
func RemoveIDs(existing, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, id := range remove {
		drop[id] = true
	}
	out := make([]string, 0, len(existing))
	for _, id := range existing {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}
