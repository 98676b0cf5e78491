package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"ledgerpass/internal/registry/models"
	"ledgerpass/internal/registry/store"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
	"ledgerpass/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) newPassport(number domain.PassportNumber, holder domain.Principal) *models.Passport {
	return &models.Passport{
		Number:           number,
		Holder:           holder,
		FullName:         "John Smith",
		IssuingAuthority: "wallet_1",
		IssuedAt:         1,
		ExpiryHeight:     100,
	}
}

func (s *InMemoryStoreSuite) TestAuthorityRows() {
	s.Run("insert then find", func() {
		a := &models.Authority{Principal: "wallet_1", Name: "State", Active: true}
		s.Require().NoError(s.store.InsertAuthority(s.ctx, a))

		found, err := s.store.FindAuthority(s.ctx, "wallet_1")
		s.Require().NoError(err)
		s.True(found.Active)
	})

	s.Run("duplicate insert is rejected", func() {
		err := s.store.InsertAuthority(s.ctx, &models.Authority{Principal: "wallet_1"})
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("update of unknown row is not found", func() {
		err := s.store.UpdateAuthority(s.ctx, &models.Authority{Principal: "ghost"})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned rows are copies", func() {
		found, err := s.store.FindAuthority(s.ctx, "wallet_1")
		s.Require().NoError(err)
		found.Active = false

		again, err := s.store.FindAuthority(s.ctx, "wallet_1")
		s.Require().NoError(err)
		s.True(again.Active)
	})
}

func (s *InMemoryStoreSuite) TestPassportRowsAndHolderIndex() {
	s.Require().NoError(s.store.InsertPassport(s.ctx, s.newPassport("US1", "wallet_2")))
	s.Require().NoError(s.store.InsertHolderPassport(s.ctx, "wallet_2", "US1"))

	number, err := s.store.FindHolderPassport(s.ctx, "wallet_2")
	s.Require().NoError(err)
	s.Equal(domain.PassportNumber("US1"), number)

	s.ErrorIs(s.store.InsertPassport(s.ctx, s.newPassport("US1", "wallet_3")), sentinel.ErrAlreadyUsed)
	s.ErrorIs(s.store.InsertHolderPassport(s.ctx, "wallet_2", "US2"), sentinel.ErrAlreadyUsed)

	_, err = s.store.FindPassport(s.ctx, "US2")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindHolderPassport(s.ctx, "wallet_9")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestRunInTxRollback verifies a failed transaction leaves no partial writes.
func (s *InMemoryStoreSuite) TestRunInTxRollback() {
	boom := errors.New("boom")
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
		s.Require().NoError(tx.InsertPassport(ctx, s.newPassport("US1", "wallet_2")))
		s.Require().NoError(tx.InsertHolderPassport(ctx, "wallet_2", "US1"))

		// writes are visible inside the transaction
		_, err := tx.FindPassport(ctx, "US1")
		s.Require().NoError(err)
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindPassport(s.ctx, "US1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindHolderPassport(s.ctx, "wallet_2")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestRunInTxCommit() {
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
		return tx.InsertAuthority(ctx, &models.Authority{Principal: "wallet_1", Active: true})
	})
	s.Require().NoError(err)

	_, err = s.store.FindAuthority(s.ctx, "wallet_1")
	s.NoError(err)
}

func (s *InMemoryStoreSuite) TestRunInTxCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	called := false
	err := s.store.RunInTx(ctx, func(context.Context, store.Store) error {
		called = true
		return nil
	})
	s.False(called)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

// TestRunInTxSerializes verifies concurrent read-modify-write transactions
// do not lose updates.
func (s *InMemoryStoreSuite) TestRunInTxSerializes() {
	s.Require().NoError(s.store.InsertPassport(s.ctx, s.newPassport("US1", "wallet_2")))

	const workers = 50
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.store.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
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

	p, err := s.store.FindPassport(s.ctx, "US1")
	s.Require().NoError(err)
	s.Equal(domain.Height(100+workers), p.ExpiryHeight)
}

func (s *InMemoryStoreSuite) TestCountActiveAuthorities() {
	s.Require().NoError(s.store.InsertAuthority(s.ctx, &models.Authority{Principal: "wallet_1", Active: true}))
	s.Require().NoError(s.store.InsertAuthority(s.ctx, &models.Authority{Principal: "wallet_3", Active: false}))

	n, err := s.store.CountActiveAuthorities(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *InMemoryStoreSuite) TestTipIsMonotonic() {
	tip, err := s.store.LoadTip(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.Height(0), tip)

	s.Require().NoError(s.store.SaveTip(s.ctx, 9))
	s.Require().NoError(s.store.SaveTip(s.ctx, 4))

	tip, err = s.store.LoadTip(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.Height(9), tip)
}
