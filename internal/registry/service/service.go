package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"

	"ledgerpass/internal/audit"
	"ledgerpass/internal/registry/metrics"
	"ledgerpass/internal/registry/models"
	"ledgerpass/internal/registry/store"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
)

var tracer = otel.Tracer("ledgerpass/registry")

type Store = store.Store

type StoreTx = store.Tx

// PassportCache is an optional cache for passport rows. Get returns
// sentinel.ErrNotFound on a miss. Committed mutations overwrite with Set;
// read misses fill with SetIfAbsent so they never replace a newer row.
type PassportCache interface {
	Get(ctx context.Context, number domain.PassportNumber) (*models.Passport, error)
	Set(ctx context.Context, passport *models.Passport) error
	SetIfAbsent(ctx context.Context, passport *models.Passport) error
	Delete(ctx context.Context, number domain.PassportNumber) error
}

// AuditPublisher appends history inside the registry transaction and
// forwards it once the transaction has committed.
type AuditPublisher interface {
	Record(ctx context.Context, event audit.Event) (audit.Event, error)
	Forward(ctx context.Context, event audit.Event)
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

// Service is the registry state machine: authority membership, passport
// issuance and the access gates in front of both.
type Service struct {
	owner          domain.Principal
	store          Store
	tx             StoreTx
	cache          PassportCache
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics

	// passportWrites counts passport mutations, bumped inside the transaction.
	// A read that saw it change while loading a row does not fill the cache.
	passportWrites atomic.Uint64

	cacheMu   sync.Mutex
	cachedSeq uint64 // newest mutation written to the cache
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCache(cache PassportCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// New constructs a Service. owner is fixed for the lifetime of the registry.
func New(owner domain.Principal, store Store, tx StoreTx, opts ...Option) *Service {
	s := &Service{
		owner:  owner,
		store:  store,
		tx:     tx,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Owner() domain.Principal {
	return s.owner
}

// SyncAuthorityGauge sets the active authority gauge from the store, so a
// restarted node reports the persisted count.
func (s *Service) SyncAuthorityGauge(ctx context.Context) error {
	if s.metrics == nil {
		return nil
	}
	n, err := s.store.CountActiveAuthorities(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count active authorities")
	}
	s.metrics.ActiveAuthorities.Set(float64(n))
	return nil
}
