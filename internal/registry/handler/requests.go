package handler

import (
	"bytes"
	"encoding/json"

	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
)

// TransactionRequest is the body of POST /v1/transactions. Args is decoded
// according to Operation.
type TransactionRequest struct {
	Operation string          `json:"operation"`
	Args      json.RawMessage `json:"args"`
}

type addAuthorityArgs struct {
	Principal string `json:"principal"`
	Name      string `json:"name"`
}

type removeAuthorityArgs struct {
	Principal string `json:"principal"`
}

type issuePassportArgs struct {
	Number         string  `json:"number"`
	Holder         string  `json:"holder"`
	FullName       string  `json:"full_name"`
	BirthDate      int64   `json:"birth_date"`
	Nationality    string  `json:"nationality"`
	ValidityPeriod uint64  `json:"validity_period"`
	MetadataURL    *string `json:"metadata_url"`
}

type revokePassportArgs struct {
	Number string `json:"number"`
}

type updateMetadataArgs struct {
	Number      string  `json:"number"`
	MetadataURL *string `json:"metadata_url"`
}

type extendValidityArgs struct {
	Number      string `json:"number"`
	ExtraPeriod uint64 `json:"extra_period"`
}

// ToOperation parses the request into a registry operation. Identifier syntax
// is checked here so malformed input never reaches the ledger.
//
// Errors: CodeBadRequest for unknown operations or undecodable args,
// CodeInvalidInput for malformed identifiers.
func (r TransactionRequest) ToOperation() (models.Operation, error) {
	switch r.Operation {
	case models.OpAddAuthority:
		var args addAuthorityArgs
		if err := decodeArgs(r.Args, &args); err != nil {
			return nil, err
		}
		principal, err := domain.ParsePrincipal(args.Principal)
		if err != nil {
			return nil, err
		}
		return models.AddAuthority{Principal: principal, Name: args.Name}, nil

	case models.OpRemoveAuthority:
		var args removeAuthorityArgs
		if err := decodeArgs(r.Args, &args); err != nil {
			return nil, err
		}
		principal, err := domain.ParsePrincipal(args.Principal)
		if err != nil {
			return nil, err
		}
		return models.RemoveAuthority{Principal: principal}, nil

	case models.OpIssuePassport:
		var args issuePassportArgs
		if err := decodeArgs(r.Args, &args); err != nil {
			return nil, err
		}
		number, err := domain.ParsePassportNumber(args.Number)
		if err != nil {
			return nil, err
		}
		holder, err := domain.ParsePrincipal(args.Holder)
		if err != nil {
			return nil, err
		}
		return models.IssuePassport{
			Number:         number,
			Holder:         holder,
			FullName:       args.FullName,
			BirthDate:      args.BirthDate,
			Nationality:    args.Nationality,
			ValidityPeriod: domain.Height(args.ValidityPeriod),
			MetadataURL:    args.MetadataURL,
		}, nil

	case models.OpRevokePassport:
		var args revokePassportArgs
		if err := decodeArgs(r.Args, &args); err != nil {
			return nil, err
		}
		number, err := domain.ParsePassportNumber(args.Number)
		if err != nil {
			return nil, err
		}
		return models.RevokePassport{Number: number}, nil

	case models.OpUpdatePassportMetadata:
		var args updateMetadataArgs
		if err := decodeArgs(r.Args, &args); err != nil {
			return nil, err
		}
		number, err := domain.ParsePassportNumber(args.Number)
		if err != nil {
			return nil, err
		}
		return models.UpdatePassportMetadata{Number: number, MetadataURL: args.MetadataURL}, nil

	case models.OpExtendPassportValidity:
		var args extendValidityArgs
		if err := decodeArgs(r.Args, &args); err != nil {
			return nil, err
		}
		number, err := domain.ParsePassportNumber(args.Number)
		if err != nil {
			return nil, err
		}
		return models.ExtendPassportValidity{Number: number, ExtraPeriod: domain.Height(args.ExtraPeriod)}, nil

	case "":
		return nil, dErrors.New(dErrors.CodeBadRequest, "operation is required")
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown operation "+r.Operation)
	}
}

func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "args are required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid args")
	}
	return nil
}

// MineRequest is the body of the operator endpoint that advances the clock.
type MineRequest struct {
	Blocks int `json:"blocks"`
}

const maxMineBlocks = 10_000

func (r MineRequest) Validate() error {
	if r.Blocks < 1 || r.Blocks > maxMineBlocks {
		return dErrors.New(dErrors.CodeBadRequest, "blocks must be between 1 and 10000")
	}
	return nil
}
