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

// IssuePassport creates a passport for req.Holder. The sender must be an
// active authority; the number and the holder must both be unused.
func (s *Service) IssuePassport(ctx context.Context, inv models.Invocation, req models.IssuePassport) (*models.Passport, error) {
	ctx, span := s.startSpan(ctx, models.OpIssuePassport, inv)
	start := time.Now()

	var (
		issued *models.Passport
		event  audit.Event
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store Store) error {
		if err := requireAuthority(ctx, store, inv.Sender); err != nil {
			return err
		}
		passport, err := models.NewPassport(req, inv.Sender, inv.Height)
		if err != nil {
			return err
		}

		_, err = store.FindPassport(ctx, req.Number)
		switch {
		case err == nil:
			return dErrors.New(dErrors.CodeAlreadyExists, "passport number already issued")
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load passport")
		}
		_, err = store.FindHolderPassport(ctx, req.Holder)
		switch {
		case err == nil:
			return dErrors.New(dErrors.CodeAlreadyExists, "holder already has a passport")
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load holder index")
		}

		if err := store.InsertPassport(ctx, passport); err != nil {
			return translate(err, "passport not found", "passport number already issued", "failed to insert passport")
		}
		if err := store.InsertHolderPassport(ctx, passport.Holder, passport.Number); err != nil {
			return translate(err, "passport not found", "holder already has a passport", "failed to index holder")
		}
		issued = passport
		event, err = s.recordAudit(ctx, inv, audit.ActionPassportIssued, passportSubject(passport.Number),
			"holder="+passport.Holder.String()+" expiry_height="+passport.ExpiryHeight.String())
		return err
	})
	s.finish(ctx, span, models.OpIssuePassport, inv, start, err)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PassportsIssued.Inc()
	}
	s.publishAudit(ctx, event)
	return issued, nil
}

// RevokePassport marks a passport revoked. The holder stays bound to it.
// Revoking twice succeeds; only the first call changes state.
func (s *Service) RevokePassport(ctx context.Context, inv models.Invocation, req models.RevokePassport) error {
	_, changed, err := s.mutatePassport(ctx, models.OpRevokePassport, audit.ActionPassportRevoked, inv, req.Number, nil,
		func(p *models.Passport) (bool, string, error) {
			if p.Revoked {
				return false, "", nil
			}
			p.Revoke()
			return true, "", nil
		})
	if err != nil {
		return err
	}
	if changed && s.metrics != nil {
		s.metrics.PassportsRevoked.Inc()
	}
	return nil
}

// UpdatePassportMetadata overwrites the metadata pointer; nil clears it.
func (s *Service) UpdatePassportMetadata(ctx context.Context, inv models.Invocation, req models.UpdatePassportMetadata) (*models.Passport, error) {
	passport, _, err := s.mutatePassport(ctx, models.OpUpdatePassportMetadata, audit.ActionPassportMetadataUpdated, inv, req.Number, req.Validate,
		func(p *models.Passport) (bool, string, error) {
			if err := p.SetMetadataURL(req.MetadataURL); err != nil {
				return false, "", err
			}
			if p.MetadataURL == nil {
				return true, "", nil
			}
			return true, *p.MetadataURL, nil
		})
	return passport, err
}

// ExtendPassportValidity pushes the stored expiry out by req.ExtraPeriod.
// Expired passports become valid again; revoked ones stay invalid.
func (s *Service) ExtendPassportValidity(ctx context.Context, inv models.Invocation, req models.ExtendPassportValidity) (*models.Passport, error) {
	passport, _, err := s.mutatePassport(ctx, models.OpExtendPassportValidity, audit.ActionPassportValidityExtended, inv, req.Number, nil,
		func(p *models.Passport) (bool, string, error) {
			if err := p.Extend(req.ExtraPeriod); err != nil {
				return false, "", err
			}
			return true, "extra_period=" + req.ExtraPeriod.String() +
				" expiry_height=" + p.ExpiryHeight.String(), nil
		})
	return passport, err
}

// passportChange applies one management call to a loaded row. It reports
// whether the row changed and the audit detail to record if it did.
type passportChange func(p *models.Passport) (changed bool, detail string, err error)

// mutatePassport runs the shared gate, validate, load, write sequence for
// passport management calls. The audit event is recorded in the same
// transaction as the row, and the committed row is written to the cache.
func (s *Service) mutatePassport(
	ctx context.Context,
	operation string,
	action audit.Action,
	inv models.Invocation,
	number domain.PassportNumber,
	validate func() error,
	change passportChange,
) (*models.Passport, bool, error) {
	ctx, span := s.startSpan(ctx, operation, inv)
	start := time.Now()

	var (
		updated *models.Passport
		changed bool
		seq     uint64
		event   audit.Event
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store Store) error {
		if err := requireAuthority(ctx, store, inv.Sender); err != nil {
			return err
		}
		if number.IsZero() {
			return dErrors.New(dErrors.CodeInvalidInput, "passport number is required")
		}
		if validate != nil {
			if err := validate(); err != nil {
				return err
			}
		}
		passport, err := store.FindPassport(ctx, number)
		if err != nil {
			return translate(err, "passport not found", "passport conflict", "failed to load passport")
		}
		var detail string
		changed, detail, err = change(passport)
		if err != nil {
			return err
		}
		updated = passport
		if !changed {
			return nil
		}
		if err := store.UpdatePassport(ctx, passport); err != nil {
			return translate(err, "passport not found", "passport conflict", "failed to update passport")
		}
		seq = s.passportWrites.Add(1)
		event, err = s.recordAudit(ctx, inv, action, passportSubject(number), detail)
		return err
	})
	s.finish(ctx, span, operation, inv, start, err)
	if err != nil {
		return nil, false, err
	}

	if changed {
		s.writeThrough(ctx, updated, seq)
		s.publishAudit(ctx, event)
	}
	return updated, changed, nil
}

// writeThrough replaces the cached row with the committed one. seq orders
// commits: a row older than one already written, or a failed write, evicts
// the entry instead so a later miss reloads from the store.
func (s *Service) writeThrough(ctx context.Context, passport *models.Passport, seq uint64) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if seq >= s.cachedSeq {
		s.cachedSeq = seq
		err := s.cache.Set(ctx, passport)
		if err == nil {
			return
		}
		s.logger.WarnContext(ctx, "failed to refresh passport cache",
			"number", passport.Number,
			"error", err,
		)
	}
	if err := s.cache.Delete(ctx, passport.Number); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate passport cache",
			"number", passport.Number,
			"error", err,
		)
	}
}
