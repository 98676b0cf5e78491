package service

import (
	"context"

	"ledgerpass/internal/registry/models"
	dErrors "ledgerpass/pkg/domain-errors"
)

// Apply dispatches op as a single transaction on behalf of inv.Sender. It is
// the entry point the ledger uses for every submitted transaction.
func (s *Service) Apply(ctx context.Context, inv models.Invocation, op models.Operation) error {
	switch o := op.(type) {
	case models.AddAuthority:
		_, err := s.AddAuthority(ctx, inv, o)
		return err
	case models.RemoveAuthority:
		return s.RemoveAuthority(ctx, inv, o)
	case models.IssuePassport:
		_, err := s.IssuePassport(ctx, inv, o)
		return err
	case models.RevokePassport:
		return s.RevokePassport(ctx, inv, o)
	case models.UpdatePassportMetadata:
		_, err := s.UpdatePassportMetadata(ctx, inv, o)
		return err
	case models.ExtendPassportValidity:
		_, err := s.ExtendPassportValidity(ctx, inv, o)
		return err
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unsupported operation")
	}
}
