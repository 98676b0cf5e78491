package models

import (
	"strings"

	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
)

// Invocation is what the hosting ledger supplies with every call: who sent
// it and the height it executes at.
type Invocation struct {
	Sender domain.Principal
	Height domain.Height
}

// Operation is one of the registry's mutating calls. The set is closed.
type Operation interface {
	OperationName() string
	isOperation()
}

const (
	OpAddAuthority           = "add-authority"
	OpRemoveAuthority        = "remove-authority"
	OpIssuePassport          = "issue-passport"
	OpRevokePassport         = "revoke-passport"
	OpUpdatePassportMetadata = "update-passport-metadata"
	OpExtendPassportValidity = "extend-passport-validity"
)

type AddAuthority struct {
	Principal domain.Principal
	Name      string
}

func (r AddAuthority) Validate() error {
	if r.Principal.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "authority principal is required")
	}
	if len(strings.TrimSpace(r.Name)) > maxAuthorityNameLength {
		return dErrors.New(dErrors.CodeInvalidInput, "authority name must be 128 characters or less")
	}
	return nil
}

type RemoveAuthority struct {
	Principal domain.Principal
}

type IssuePassport struct {
	Number         domain.PassportNumber
	Holder         domain.Principal
	FullName       string
	BirthDate      int64
	Nationality    string
	ValidityPeriod domain.Height
	MetadataURL    *string
}

// Validate checks argument shape only; uniqueness is the registry's job.
func (r IssuePassport) Validate() error {
	if r.Number.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "passport number is required")
	}
	if r.Holder.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "holder is required")
	}
	if len(r.FullName) > maxDisplayLength {
		return dErrors.New(dErrors.CodeInvalidInput, "full name must be 128 characters or less")
	}
	if len(r.Nationality) > maxDisplayLength {
		return dErrors.New(dErrors.CodeInvalidInput, "nationality must be 128 characters or less")
	}
	return validateURL(r.MetadataURL)
}

type RevokePassport struct {
	Number domain.PassportNumber
}

type UpdatePassportMetadata struct {
	Number      domain.PassportNumber
	MetadataURL *string
}

func (r UpdatePassportMetadata) Validate() error {
	return validateURL(r.MetadataURL)
}

type ExtendPassportValidity struct {
	Number      domain.PassportNumber
	ExtraPeriod domain.Height
}

func (AddAuthority) OperationName() string           { return OpAddAuthority }
func (RemoveAuthority) OperationName() string        { return OpRemoveAuthority }
func (IssuePassport) OperationName() string          { return OpIssuePassport }
func (RevokePassport) OperationName() string         { return OpRevokePassport }
func (UpdatePassportMetadata) OperationName() string { return OpUpdatePassportMetadata }
func (ExtendPassportValidity) OperationName() string { return OpExtendPassportValidity }

func (AddAuthority) isOperation()           {}
func (RemoveAuthority) isOperation()        {}
func (IssuePassport) isOperation()          {}
func (RevokePassport) isOperation()         {}
func (UpdatePassportMetadata) isOperation() {}
func (ExtendPassportValidity) isOperation() {}
