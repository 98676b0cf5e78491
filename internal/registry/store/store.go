// Package store declares the persistence ports of the registry. Lookups
// return sentinel.ErrNotFound when a row is absent; inserts return
// sentinel.ErrAlreadyUsed on a key collision.
package store

import (
	"context"

	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
)

type Store interface {
	FindAuthority(ctx context.Context, principal domain.Principal) (*models.Authority, error)
	InsertAuthority(ctx context.Context, authority *models.Authority) error
	UpdateAuthority(ctx context.Context, authority *models.Authority) error
	CountActiveAuthorities(ctx context.Context) (int, error)

	FindPassport(ctx context.Context, number domain.PassportNumber) (*models.Passport, error)
	InsertPassport(ctx context.Context, passport *models.Passport) error
	UpdatePassport(ctx context.Context, passport *models.Passport) error

	FindHolderPassport(ctx context.Context, holder domain.Principal) (domain.PassportNumber, error)
	InsertHolderPassport(ctx context.Context, holder domain.Principal, number domain.PassportNumber) error
}

// Tx runs fn as one atomic registry transaction holding the whole-state
// lock. Any error returned by fn discards every write fn made.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// Tip persists the height of the last mined block. SaveTip never moves the
// stored height backwards.
type Tip interface {
	LoadTip(ctx context.Context) (domain.Height, error)
	SaveTip(ctx context.Context, height domain.Height) error
}
