package service

import (
	"context"
	"errors"

	"ledgerpass/internal/audit"
	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
	"ledgerpass/pkg/platform/sentinel"
)

// GetPassport returns the passport with validity evaluated at height.
func (s *Service) GetPassport(ctx context.Context, number domain.PassportNumber, height domain.Height) (*models.PassportView, error) {
	passport, err := s.loadPassport(ctx, number)
	if err != nil {
		return nil, err
	}
	view := passport.View(height)
	return &view, nil
}

// GetHolderPassport returns the number bound to holder.
func (s *Service) GetHolderPassport(ctx context.Context, holder domain.Principal) (domain.PassportNumber, error) {
	number, err := s.store.FindHolderPassport(ctx, holder)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "holder has no passport")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load holder index")
	}
	return number, nil
}

// IsValidPassport reports whether number exists, is unrevoked and is
// unexpired at height. Unknown numbers are simply invalid.
func (s *Service) IsValidPassport(ctx context.Context, number domain.PassportNumber, height domain.Height) (bool, error) {
	passport, err := s.loadPassport(ctx, number)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return passport.IsValidAt(height), nil
}

// PassportHistory lists committed mutations of a passport.
func (s *Service) PassportHistory(ctx context.Context, number domain.PassportNumber) ([]audit.Event, error) {
	return s.history(ctx, passportSubject(number))
}

func (s *Service) loadPassport(ctx context.Context, number domain.PassportNumber) (*models.Passport, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, number)
		switch {
		case err == nil:
			s.observeCache("hit")
			return cached, nil
		case errors.Is(err, sentinel.ErrNotFound):
			s.observeCache("miss")
		default:
			s.observeCache("error")
			s.logger.WarnContext(ctx, "passport cache lookup failed", "number", number, "error", err)
		}
	}

	writes := s.passportWrites.Load()
	passport, err := s.store.FindPassport(ctx, number)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "passport not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load passport")
	}

	// a mutation that committed while the row loaded owns the cache entry
	if s.cache != nil && s.passportWrites.Load() == writes {
		if err := s.cache.SetIfAbsent(ctx, passport); err != nil {
			s.logger.WarnContext(ctx, "failed to populate passport cache", "number", number, "error", err)
		}
	}
	return passport, nil
}

func (s *Service) observeCache(result string) {
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(result)
	}
}
