package service

import (
	"context"
	"errors"
	"time"

	"ledgerpass/internal/audit"
	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
	"ledgerpass/pkg/platform/sentinel"
)

// AddAuthority registers principal as an active authority. Only the owner may
// call it, and a principal that was ever registered cannot be added again.
func (s *Service) AddAuthority(ctx context.Context, inv models.Invocation, req models.AddAuthority) (*models.Authority, error) {
	ctx, span := s.startSpan(ctx, models.OpAddAuthority, inv)
	start := time.Now()

	var (
		added *models.Authority
		event audit.Event
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store Store) error {
		if err := s.requireOwner(inv.Sender); err != nil {
			return err
		}
		authority, err := models.NewAuthority(req.Principal, req.Name, inv.Height)
		if err != nil {
			return err
		}
		_, err = store.FindAuthority(ctx, req.Principal)
		switch {
		case err == nil:
			return dErrors.New(dErrors.CodeAlreadyExists, "authority already registered")
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority")
		}
		if err := store.InsertAuthority(ctx, authority); err != nil {
			return translate(err, "authority not found", "authority already registered", "failed to insert authority")
		}
		added = authority
		event, err = s.recordAudit(ctx, inv, audit.ActionAuthorityAdded, authoritySubject(authority.Principal), authority.Name)
		return err
	})
	s.finish(ctx, span, models.OpAddAuthority, inv, start, err)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ActiveAuthorities.Inc()
	}
	s.publishAudit(ctx, event)
	return added, nil
}

// RemoveAuthority deactivates principal. The row is kept so the principal can
// never be re-added. Removing an inactive authority succeeds without change.
func (s *Service) RemoveAuthority(ctx context.Context, inv models.Invocation, req models.RemoveAuthority) error {
	ctx, span := s.startSpan(ctx, models.OpRemoveAuthority, inv)
	start := time.Now()

	var (
		changed bool
		event   audit.Event
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store Store) error {
		if err := s.requireOwner(inv.Sender); err != nil {
			return err
		}
		if req.Principal.IsZero() {
			return dErrors.New(dErrors.CodeInvalidInput, "authority principal is required")
		}
		authority, err := store.FindAuthority(ctx, req.Principal)
		if err != nil {
			return translate(err, "authority not found", "authority conflict", "failed to load authority")
		}
		if !authority.Deactivate(inv.Height) {
			return nil
		}
		if err := store.UpdateAuthority(ctx, authority); err != nil {
			return translate(err, "authority not found", "authority conflict", "failed to update authority")
		}
		changed = true
		event, err = s.recordAudit(ctx, inv, audit.ActionAuthorityRemoved, authoritySubject(req.Principal), "")
		return err
	})
	s.finish(ctx, span, models.OpRemoveAuthority, inv, start, err)
	if err != nil {
		return err
	}

	if changed {
		if s.metrics != nil {
			s.metrics.ActiveAuthorities.Dec()
		}
		s.publishAudit(ctx, event)
	}
	return nil
}

// IsAuthority reports whether principal holds an active authority row.
func (s *Service) IsAuthority(ctx context.Context, principal domain.Principal) (bool, error) {
	authority, err := s.store.FindAuthority(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority")
	}
	return authority.Active, nil
}

// AuthorityHistory lists the committed add and remove events for principal.
func (s *Service) AuthorityHistory(ctx context.Context, principal domain.Principal) ([]audit.Event, error) {
	return s.history(ctx, authoritySubject(principal))
}

func (s *Service) history(ctx context.Context, subject string) ([]audit.Event, error) {
	if s.auditPublisher == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditPublisher.List(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events")
	}
	return events, nil
}
