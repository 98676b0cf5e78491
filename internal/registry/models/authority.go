package models

import (
	"strings"

	"ledgerpass/pkg/domain"
)

const maxAuthorityNameLength = 128

// Authority is a principal allowed to issue and manage passports.
//
// Invariants:
//   - at most one row per principal, for all time
//   - rows are never deleted; removal clears Active
//   - Active is the only gate for issuing and managing rights
//   - a removed authority cannot be re-added
type Authority struct {
	Principal domain.Principal `json:"principal"`
	Name      string           `json:"name"`
	Active    bool             `json:"active"`
	AddedAt   domain.Height    `json:"added_at"`
	UpdatedAt domain.Height    `json:"updated_at"`
}

// NewAuthority builds an active authority row.
func NewAuthority(principal domain.Principal, name string, at domain.Height) (*Authority, error) {
	if err := (AddAuthority{Principal: principal, Name: name}).Validate(); err != nil {
		return nil, err
	}
	return &Authority{
		Principal: principal,
		Name:      strings.TrimSpace(name),
		Active:    true,
		AddedAt:   at,
		UpdatedAt: at,
	}, nil
}

// Deactivate clears the active flag. Deactivating an inactive row is a no-op
// and reports false.
func (a *Authority) Deactivate(at domain.Height) bool {
	if !a.Active {
		return false
	}
	a.Active = false
	a.UpdatedAt = at
	return true
}
