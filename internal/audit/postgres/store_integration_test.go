//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ledgerpass/internal/audit"
	auditpg "ledgerpass/internal/audit/postgres"
	"ledgerpass/internal/registry/store"
	registrypg "ledgerpass/internal/registry/store/postgres"
	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *auditpg.Store
	ctx      context.Context
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(registrypg.Migrate(s.ctx, s.postgres.DB))
	s.store = auditpg.New(s.postgres.DB)
}

func (s *AuditStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "audit_events"))
}

func event(subject string, height domain.Height, action audit.Action) audit.Event {
	return audit.Event{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		Height:    height,
		Actor:     "wallet_1",
		Subject:   subject,
		Action:    action,
		RequestID: "req-1",
	}
}

func (s *AuditStoreSuite) TestListBySubjectOrdersByHeight() {
	later := event("passport:US123", 14, audit.ActionPassportRevoked)
	earlier := event("passport:US123", 10, audit.ActionPassportIssued)
	other := event("passport:GB456", 11, audit.ActionPassportIssued)
	for _, e := range []audit.Event{later, earlier, other} {
		s.Require().NoError(s.store.Append(s.ctx, e))
	}

	events, err := s.store.ListBySubject(s.ctx, "passport:US123")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(earlier.ID, events[0].ID)
	s.Equal(audit.ActionPassportIssued, events[0].Action)
	s.Equal(domain.Height(14), events[1].Height)
	s.Equal(domain.Principal("wallet_1"), events[1].Actor)
}

func (s *AuditStoreSuite) TestAppendIsIdempotentOnID() {
	e := event("authority:wallet_1", 3, audit.ActionAuthorityAdded)
	s.Require().NoError(s.store.Append(s.ctx, e))
	s.Require().NoError(s.store.Append(s.ctx, e))

	events, err := s.store.ListBySubject(s.ctx, "authority:wallet_1")
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *AuditStoreSuite) TestUnknownSubjectIsEmpty() {
	events, err := s.store.ListBySubject(s.ctx, "passport:NOPE")
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *AuditStoreSuite) TestAppendJoinsRegistryTransaction() {
	registry := registrypg.New(s.postgres.DB)
	rolledBack := event("passport:US123", 3, audit.ActionPassportRevoked)
	committed := event("passport:US123", 4, audit.ActionPassportIssued)

	err := registry.RunInTx(s.ctx, func(ctx context.Context, _ store.Store) error {
		s.Require().NoError(s.store.Append(ctx, rolledBack))
		return errors.New("registry write failed")
	})
	s.Require().Error(err)

	s.Require().NoError(registry.RunInTx(s.ctx, func(ctx context.Context, _ store.Store) error {
		return s.store.Append(ctx, committed)
	}))

	events, err := s.store.ListBySubject(s.ctx, "passport:US123")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(committed.ID, events[0].ID)
}
