package cache

import (
	"context"
	"errors"
	"log/slog"

	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/platform/circuit"
	"ledgerpass/pkg/platform/sentinel"
)

// Backend is the cache a GuardedCache protects.
type Backend interface {
	Get(ctx context.Context, number domain.PassportNumber) (*models.Passport, error)
	Set(ctx context.Context, passport *models.Passport) error
	SetIfAbsent(ctx context.Context, passport *models.Passport) error
	Delete(ctx context.Context, number domain.PassportNumber) error
}

// GuardedCache stops reading from and populating a failing backend until the
// breaker lets a trial call through. Evictions are always attempted, and a
// write skipped while open becomes an eviction, so a recovered backend does
// not serve rows that changed while it was skipped.
type GuardedCache struct {
	backend Backend
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedCache(backend Backend, breaker *circuit.Breaker, logger *slog.Logger) *GuardedCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GuardedCache{backend: backend, breaker: breaker, logger: logger}
}

// Get reports an open breaker as a miss.
func (g *GuardedCache) Get(ctx context.Context, number domain.PassportNumber) (*models.Passport, error) {
	if !g.breaker.Allow() {
		return nil, sentinel.ErrNotFound
	}
	passport, err := g.backend.Get(ctx, number)
	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		g.success(ctx)
		return passport, err
	}
	g.failure(ctx)
	return nil, err
}

func (g *GuardedCache) Set(ctx context.Context, passport *models.Passport) error {
	if !g.breaker.Allow() {
		return g.Delete(ctx, passport.Number)
	}
	return g.record(ctx, g.backend.Set(ctx, passport))
}

// SetIfAbsent is a read-path fill; it is dropped while the breaker is open.
func (g *GuardedCache) SetIfAbsent(ctx context.Context, passport *models.Passport) error {
	if !g.breaker.Allow() {
		return nil
	}
	return g.record(ctx, g.backend.SetIfAbsent(ctx, passport))
}

func (g *GuardedCache) Delete(ctx context.Context, number domain.PassportNumber) error {
	return g.record(ctx, g.backend.Delete(ctx, number))
}

func (g *GuardedCache) record(ctx context.Context, err error) error {
	if err != nil {
		g.failure(ctx)
		return err
	}
	g.success(ctx)
	return nil
}

func (g *GuardedCache) success(ctx context.Context) {
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "cache circuit closed", "breaker", g.breaker.Name())
	}
}

func (g *GuardedCache) failure(ctx context.Context) {
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.logger.WarnContext(ctx, "cache circuit opened", "breaker", g.breaker.Name())
	}
}
