package service

import (
	"context"
	"errors"

	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
	"ledgerpass/pkg/platform/sentinel"
)

// requireOwner admits only the registry owner.
func (s *Service) requireOwner(sender domain.Principal) error {
	if sender.IsZero() || sender != s.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "sender is not the registry owner")
	}
	return nil
}

// requireAuthority admits senders with an active authority row. It reads
// through store so the check sees the same transaction as the mutation.
func requireAuthority(ctx context.Context, store Store, sender domain.Principal) error {
	if sender.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "sender is not an active authority")
	}
	authority, err := store.FindAuthority(ctx, sender)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "sender is not an active authority")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority")
	}
	if !authority.Active {
		return dErrors.New(dErrors.CodeUnauthorized, "sender is not an active authority")
	}
	return nil
}

// translate maps store sentinels onto the registry taxonomy.
func translate(err error, notFound, conflict, internal string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeAlreadyExists, conflict)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internal)
	}
}
