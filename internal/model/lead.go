package model

import (
	"strings"
	"time"
)

// Lead is a prospective customer's captured name/email pair. Leads are only
// ever inserted; nothing in this service mutates or deletes them.
type Lead struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Idempotent: NormalizeEmail(NormalizeEmail(e)) == NormalizeEmail(e).
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims surrounding whitespace; an all-whitespace name becomes
// empty and is stored as null.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NewLead builds a normalized Lead. The returned Lead is invalid when the
// normalized email is empty; callers must check Valid before persisting.
func NewLead(name, email string) Lead {
	return Lead{
		Name:  NormalizeName(name),
		Email: NormalizeEmail(email),
	}
}

// Valid reports whether the lead has a non-empty normalized email.
func (l Lead) Valid() bool {
	return l.Email != ""
}
