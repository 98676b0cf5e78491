// Package memory is the default registry store: three maps behind one
// mutex, with copy-on-write transactions.
package memory

import (
	"context"
	"maps"
	"sync"

	"ledgerpass/internal/registry/models"
	"ledgerpass/internal/registry/store"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
	"ledgerpass/pkg/platform/sentinel"
)

type state struct {
	authorities map[domain.Principal]models.Authority
	passports   map[domain.PassportNumber]models.Passport
	holders     map[domain.Principal]domain.PassportNumber
}

func newState() *state {
	return &state{
		authorities: make(map[domain.Principal]models.Authority),
		passports:   make(map[domain.PassportNumber]models.Passport),
		holders:     make(map[domain.Principal]domain.PassportNumber),
	}
}

// clone copies the maps. Rows are stored by value and MetadataURL strings
// are never mutated in place, so a shallow map copy is a full snapshot.
func (s *state) clone() *state {
	return &state{
		authorities: maps.Clone(s.authorities),
		passports:   maps.Clone(s.passports),
		holders:     maps.Clone(s.holders),
	}
}

// InMemory implements store.Store and store.Tx.
type InMemory struct {
	mu    sync.RWMutex
	state *state
	tip   domain.Height
}

func New() *InMemory {
	return &InMemory{state: newState()}
}

// RunInTx runs fn against a private copy of the state and publishes it only
// when fn succeeds. Transactions are serialized on the write lock.
func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context, store store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &view{state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *InMemory) read() *view {
	return &view{state: s.state}
}

func (s *InMemory) FindAuthority(ctx context.Context, principal domain.Principal) (*models.Authority, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindAuthority(ctx, principal)
}

func (s *InMemory) InsertAuthority(ctx context.Context, authority *models.Authority) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().InsertAuthority(ctx, authority)
}

func (s *InMemory) UpdateAuthority(ctx context.Context, authority *models.Authority) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().UpdateAuthority(ctx, authority)
}

func (s *InMemory) CountActiveAuthorities(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().CountActiveAuthorities(ctx)
}

func (s *InMemory) LoadTip(_ context.Context) (domain.Height, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tip, nil
}

func (s *InMemory) SaveTip(_ context.Context, height domain.Height) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tip = max(s.tip, height)
	return nil
}

func (s *InMemory) FindPassport(ctx context.Context, number domain.PassportNumber) (*models.Passport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindPassport(ctx, number)
}

func (s *InMemory) InsertPassport(ctx context.Context, passport *models.Passport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().InsertPassport(ctx, passport)
}

func (s *InMemory) UpdatePassport(ctx context.Context, passport *models.Passport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().UpdatePassport(ctx, passport)
}

func (s *InMemory) FindHolderPassport(ctx context.Context, holder domain.Principal) (domain.PassportNumber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindHolderPassport(ctx, holder)
}

func (s *InMemory) InsertHolderPassport(ctx context.Context, holder domain.Principal, number domain.PassportNumber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().InsertHolderPassport(ctx, holder, number)
}

// view operates on a state without locking; the caller holds the lock.
type view struct {
	state *state
}

func (v *view) FindAuthority(_ context.Context, principal domain.Principal) (*models.Authority, error) {
	a, ok := v.state.authorities[principal]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (v *view) InsertAuthority(_ context.Context, authority *models.Authority) error {
	if _, ok := v.state.authorities[authority.Principal]; ok {
		return sentinel.ErrAlreadyUsed
	}
	v.state.authorities[authority.Principal] = *authority
	return nil
}

func (v *view) UpdateAuthority(_ context.Context, authority *models.Authority) error {
	if _, ok := v.state.authorities[authority.Principal]; !ok {
		return sentinel.ErrNotFound
	}
	v.state.authorities[authority.Principal] = *authority
	return nil
}

func (v *view) CountActiveAuthorities(_ context.Context) (int, error) {
	n := 0
	for _, a := range v.state.authorities {
		if a.Active {
			n++
		}
	}
	return n, nil
}

func (v *view) FindPassport(_ context.Context, number domain.PassportNumber) (*models.Passport, error) {
	p, ok := v.state.passports[number]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (v *view) InsertPassport(_ context.Context, passport *models.Passport) error {
	if _, ok := v.state.passports[passport.Number]; ok {
		return sentinel.ErrAlreadyUsed
	}
	v.state.passports[passport.Number] = *passport
	return nil
}

func (v *view) UpdatePassport(_ context.Context, passport *models.Passport) error {
	if _, ok := v.state.passports[passport.Number]; !ok {
		return sentinel.ErrNotFound
	}
	v.state.passports[passport.Number] = *passport
	return nil
}

func (v *view) FindHolderPassport(_ context.Context, holder domain.Principal) (domain.PassportNumber, error) {
	number, ok := v.state.holders[holder]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return number, nil
}

func (v *view) InsertHolderPassport(_ context.Context, holder domain.Principal, number domain.PassportNumber) error {
	if _, ok := v.state.holders[holder]; ok {
		return sentinel.ErrAlreadyUsed
	}
	v.state.holders[holder] = number
	return nil
}
