package models

import (
	"strings"

	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
)

const (
	maxDisplayLength     = 128
	maxMetadataURLLength = 256
)

// Passport is an issued credential.
//
// Invariants:
//   - Number is unique for all time and never reused, even after revocation
//   - ExpiryHeight = IssuedAt + validity period, moved only by Extend
//   - Revoked is set once and never reset
//   - validity is derived at read time (IsValidAt), never stored
type Passport struct {
	Number           domain.PassportNumber `json:"number"`
	Holder           domain.Principal      `json:"holder"`
	FullName         string                `json:"full_name"`
	BirthDate        int64                 `json:"birth_date"`
	Nationality      string                `json:"nationality"`
	IssuingAuthority domain.Principal      `json:"issuing_authority"`
	IssuedAt         domain.Height         `json:"issued_at"`
	ExpiryHeight     domain.Height         `json:"expiry_height"`
	Revoked          bool                  `json:"revoked"`
	MetadataURL      *string               `json:"metadata_url,omitempty"`
}

// NewPassport builds an unrevoked passport issued at height at.
func NewPassport(req IssuePassport, issuer domain.Principal, at domain.Height) (*Passport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	expiry, err := at.Add(req.ValidityPeriod)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "validity period exceeds the ledger height range")
	}
	return &Passport{
		Number:           req.Number,
		Holder:           req.Holder,
		FullName:         strings.TrimSpace(req.FullName),
		BirthDate:        req.BirthDate,
		Nationality:      strings.TrimSpace(req.Nationality),
		IssuingAuthority: issuer,
		IssuedAt:         at,
		ExpiryHeight:     expiry,
		MetadataURL:      normalizeURL(req.MetadataURL),
	}, nil
}

// IsValidAt reports whether the passport is unrevoked and unexpired at height.
func (p *Passport) IsValidAt(height domain.Height) bool {
	return !p.Revoked && height.Before(p.ExpiryHeight)
}

// Revoke marks the passport revoked. Revocation is terminal.
func (p *Passport) Revoke() {
	p.Revoked = true
}

// Extend adds extra to the stored expiry, not to the current height.
func (p *Passport) Extend(extra domain.Height) error {
	expiry, err := p.ExpiryHeight.Add(extra)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "extension exceeds the ledger height range")
	}
	p.ExpiryHeight = expiry
	return nil
}

// SetMetadataURL overwrites the metadata pointer; nil or blank clears it.
func (p *Passport) SetMetadataURL(url *string) error {
	if err := validateURL(url); err != nil {
		return err
	}
	p.MetadataURL = normalizeURL(url)
	return nil
}

// View pairs the passport with its validity at height.
func (p *Passport) View(height domain.Height) PassportView {
	return PassportView{Passport: *p, IsValid: p.IsValidAt(height), Height: height}
}

// PassportView is a read model: the stored row plus validity derived at Height.
type PassportView struct {
	Passport
	IsValid bool          `json:"is_valid"`
	Height  domain.Height `json:"evaluated_at"`
}

func validateURL(url *string) error {
	if url != nil && len(*url) > maxMetadataURLLength {
		return dErrors.New(dErrors.CodeInvalidInput, "metadata url must be 256 characters or less")
	}
	return nil
}

func normalizeURL(url *string) *string {
	if url == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*url)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
