//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"ledgerpass/internal/ledger"
	"ledgerpass/internal/registry/models"
	"ledgerpass/internal/registry/service"
	"ledgerpass/internal/registry/store"
	"ledgerpass/internal/registry/store/postgres"
	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/platform/sentinel"
	"ledgerpass/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(postgres.Migrate(s.ctx, s.postgres.DB))
	// rerun is a no-op
	s.Require().NoError(postgres.Migrate(s.ctx, s.postgres.DB))
	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "holder_index", "passports", "authorities", "chain_state"))
}

func (s *PostgresStoreSuite) seedAuthority(p domain.Principal) {
	s.Require().NoError(s.store.InsertAuthority(s.ctx, &models.Authority{Principal: p, Name: "State", Active: true, AddedAt: 1, UpdatedAt: 1}))
}

func newPassport(number domain.PassportNumber, holder domain.Principal) *models.Passport {
	url := "https://metadata.example.com/" + number.String()
	return &models.Passport{
		Number:           number,
		Holder:           holder,
		FullName:         "John Smith",
		BirthDate:        -315619200,
		Nationality:      "United States",
		IssuingAuthority: "wallet_1",
		IssuedAt:         10,
		ExpiryHeight:     11,
		MetadataURL:      &url,
	}
}

func (s *PostgresStoreSuite) TestAuthorityRoundTrip() {
	s.seedAuthority("wallet_1")

	err := s.store.InsertAuthority(s.ctx, &models.Authority{Principal: "wallet_1", Name: "Again"})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	a, err := s.store.FindAuthority(s.ctx, "wallet_1")
	s.Require().NoError(err)
	s.True(a.Deactivate(5))
	s.Require().NoError(s.store.UpdateAuthority(s.ctx, a))

	a, err = s.store.FindAuthority(s.ctx, "wallet_1")
	s.Require().NoError(err)
	s.False(a.Active)
	s.Equal(domain.Height(5), a.UpdatedAt)

	_, err = s.store.FindAuthority(s.ctx, "ghost")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.UpdateAuthority(s.ctx, &models.Authority{Principal: "ghost"}), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestPassportRoundTrip() {
	s.seedAuthority("wallet_1")
	p := newPassport("US1", "wallet_2")
	s.Require().NoError(s.store.InsertPassport(s.ctx, p))
	s.Require().NoError(s.store.InsertHolderPassport(s.ctx, "wallet_2", "US1"))

	got, err := s.store.FindPassport(s.ctx, "US1")
	s.Require().NoError(err)
	s.Equal(*p, *got)

	got.Revoke()
	s.Require().NoError(got.Extend(5))
	s.Require().NoError(got.SetMetadataURL(nil))
	s.Require().NoError(s.store.UpdatePassport(s.ctx, got))

	again, err := s.store.FindPassport(s.ctx, "US1")
	s.Require().NoError(err)
	s.True(again.Revoked)
	s.Equal(domain.Height(16), again.ExpiryHeight)
	s.Nil(again.MetadataURL)

	s.ErrorIs(s.store.InsertPassport(s.ctx, newPassport("US1", "wallet_3")), sentinel.ErrAlreadyUsed)
	s.ErrorIs(s.store.InsertHolderPassport(s.ctx, "wallet_2", "US1"), sentinel.ErrAlreadyUsed)

	number, err := s.store.FindHolderPassport(s.ctx, "wallet_2")
	s.Require().NoError(err)
	s.Equal(domain.PassportNumber("US1"), number)
}

func (s *PostgresStoreSuite) TestRunInTxRollsBack() {
	s.seedAuthority("wallet_1")
	boom := errors.New("boom")

	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
		s.Require().NoError(tx.InsertPassport(ctx, newPassport("US1", "wallet_2")))
		s.Require().NoError(tx.InsertHolderPassport(ctx, "wallet_2", "US1"))
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindPassport(s.ctx, "US1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindHolderPassport(s.ctx, "wallet_2")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestRunInTxSerializes verifies the advisory lock prevents lost updates.
func (s *PostgresStoreSuite) TestRunInTxSerializes() {
	s.seedAuthority("wallet_1")
	s.Require().NoError(s.store.InsertPassport(s.ctx, newPassport("US1", "wallet_2")))

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.store.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
				p, err := tx.FindPassport(ctx, "US1")
				if err != nil {
					return err
				}
				if err := p.Extend(1); err != nil {
					return err
				}
				return tx.UpdatePassport(ctx, p)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	p, err := s.store.FindPassport(s.ctx, "US1")
	s.Require().NoError(err)
	s.Equal(domain.Height(11+workers), p.ExpiryHeight)
}

func (s *PostgresStoreSuite) TestTipNeverMovesBackwards() {
	tip, err := s.store.LoadTip(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.Height(0), tip)

	s.Require().NoError(s.store.SaveTip(s.ctx, 40))
	s.Require().NoError(s.store.SaveTip(s.ctx, 12))

	tip, err = postgres.New(s.postgres.DB).LoadTip(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.Height(40), tip)
}

func (s *PostgresStoreSuite) TestChainResumesAfterReopen() {
	const owner domain.Principal = "deployer"
	chain, err := ledger.Open(s.ctx, service.New(owner, s.store, s.store), s.store)
	s.Require().NoError(err)

	_, err = chain.MineBlock(s.ctx, []ledger.Tx{{Sender: owner, Operation: models.AddAuthority{Principal: "wallet_1", Name: "State"}}})
	s.Require().NoError(err)
	block, err := chain.MineBlock(s.ctx, []ledger.Tx{{Sender: "wallet_1", Operation: models.IssuePassport{
		Number: "X1", Holder: "wallet_2", FullName: "John Smith", Nationality: "United States", ValidityPeriod: 1,
	}}})
	s.Require().NoError(err)
	s.Require().True(block.Receipts[0].OK, block.Receipts[0].Error)
	s.Require().NoError(chain.MineEmptyBlocks(s.ctx, 20))

	reopened := postgres.New(s.postgres.DB)
	registry := service.New(owner, reopened, reopened)
	restarted, err := ledger.Open(s.ctx, registry, reopened)
	s.Require().NoError(err)
	s.Equal(chain.Height(), restarted.Height())

	valid, err := registry.IsValidPassport(s.ctx, "X1", restarted.Height())
	s.Require().NoError(err)
	s.False(valid)
}

func (s *PostgresStoreSuite) TestCountActiveAuthorities() {
	s.seedAuthority("wallet_1")
	s.seedAuthority("wallet_3")
	s.Require().NoError(s.store.UpdateAuthority(s.ctx, &models.Authority{Principal: "wallet_3", Name: "State", Active: false, UpdatedAt: 2}))

	n, err := s.store.CountActiveAuthorities(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}
