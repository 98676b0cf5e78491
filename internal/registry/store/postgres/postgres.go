// Package postgres persists the registry in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ledgerpass/internal/registry/models"
	"ledgerpass/internal/registry/store"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
	"ledgerpass/pkg/platform/sentinel"
	txctx "ledgerpass/pkg/platform/tx"
)

const (
	// registryLockKey is the advisory lock taken by every registry transaction.
	registryLockKey   = 7_340_221_901
	defaultTxTimeout  = 5 * time.Second
	uniqueViolation   = "23505"
	foreignKeyViolate = "23503"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements store.Store and store.Tx over database/sql with lib/pq.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

func New(db *sql.DB) *Store {
	return &Store{db: db, timeout: defaultTxTimeout}
}

// execer returns the transaction bound to ctx, or the pool.
func (s *Store) execer(ctx context.Context) execer {
	if tx, ok := txctx.From(ctx); ok {
		return tx
	}
	return s.db
}

// RunInTx opens a SQL transaction, takes the registry-wide advisory lock and
// runs fn with the transaction bound to its context.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, store store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin registry transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(registryLockKey)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "acquire registry lock")
	}
	if err := fn(txctx.WithTx(ctx, tx), s); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit registry transaction")
	}
	return nil
}

func (s *Store) FindAuthority(ctx context.Context, principal domain.Principal) (*models.Authority, error) {
	var a models.Authority
	var addedAt, updatedAt int64
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT principal, name, active, added_at, updated_at
		FROM authorities WHERE principal = $1`, principal.String(),
	).Scan(&a.Principal, &a.Name, &a.Active, &addedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find authority: %w", err)
	}
	a.AddedAt = domain.Height(addedAt)
	a.UpdatedAt = domain.Height(updatedAt)
	return &a, nil
}

func (s *Store) InsertAuthority(ctx context.Context, a *models.Authority) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO authorities (principal, name, active, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.Principal.String(), a.Name, a.Active, int64(a.AddedAt), int64(a.UpdatedAt),
	)
	return mapWriteErr(err, "insert authority")
}

func (s *Store) UpdateAuthority(ctx context.Context, a *models.Authority) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE authorities SET name = $2, active = $3, updated_at = $4
		WHERE principal = $1`,
		a.Principal.String(), a.Name, a.Active, int64(a.UpdatedAt),
	)
	if err != nil {
		return mapWriteErr(err, "update authority")
	}
	return requireRow(res, "update authority")
}

func (s *Store) CountActiveAuthorities(ctx context.Context) (int, error) {
	var n int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT count(*) FROM authorities WHERE active`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active authorities: %w", err)
	}
	return n, nil
}

// LoadTip returns 0 before the first block is persisted.
func (s *Store) LoadTip(ctx context.Context) (domain.Height, error) {
	var height int64
	err := s.db.QueryRowContext(ctx, `SELECT height FROM chain_state WHERE id`).Scan(&height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("load chain tip: %w", err)
	}
	return domain.Height(height), nil
}

func (s *Store) SaveTip(ctx context.Context, height domain.Height) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chain_state (id, height) VALUES (TRUE, $1)
		ON CONFLICT (id) DO UPDATE SET height = GREATEST(chain_state.height, EXCLUDED.height)`,
		int64(height),
	)
	if err != nil {
		return fmt.Errorf("save chain tip: %w", err)
	}
	return nil
}

func (s *Store) FindPassport(ctx context.Context, number domain.PassportNumber) (*models.Passport, error) {
	var (
		p                models.Passport
		issuedAt, expiry int64
		metadataURL      sql.NullString
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT number, holder, full_name, birth_date, nationality, issuing_authority,
		       issued_at, expiry_height, revoked, metadata_url
		FROM passports WHERE number = $1`, number.String(),
	).Scan(&p.Number, &p.Holder, &p.FullName, &p.BirthDate, &p.Nationality, &p.IssuingAuthority,
		&issuedAt, &expiry, &p.Revoked, &metadataURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find passport: %w", err)
	}
	p.IssuedAt = domain.Height(issuedAt)
	p.ExpiryHeight = domain.Height(expiry)
	if metadataURL.Valid {
		p.MetadataURL = &metadataURL.String
	}
	return &p, nil
}

func (s *Store) InsertPassport(ctx context.Context, p *models.Passport) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO passports (number, holder, full_name, birth_date, nationality, issuing_authority,
		                       issued_at, expiry_height, revoked, metadata_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.Number.String(), p.Holder.String(), p.FullName, p.BirthDate, p.Nationality, p.IssuingAuthority.String(),
		int64(p.IssuedAt), int64(p.ExpiryHeight), p.Revoked, nullString(p.MetadataURL),
	)
	return mapWriteErr(err, "insert passport")
}

func (s *Store) UpdatePassport(ctx context.Context, p *models.Passport) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE passports SET expiry_height = $2, revoked = $3, metadata_url = $4
		WHERE number = $1`,
		p.Number.String(), int64(p.ExpiryHeight), p.Revoked, nullString(p.MetadataURL),
	)
	if err != nil {
		return mapWriteErr(err, "update passport")
	}
	return requireRow(res, "update passport")
}

func (s *Store) FindHolderPassport(ctx context.Context, holder domain.Principal) (domain.PassportNumber, error) {
	var number string
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT number FROM holder_index WHERE holder = $1`, holder.String(),
	).Scan(&number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("find holder passport: %w", err)
	}
	return domain.PassportNumber(number), nil
}

func (s *Store) InsertHolderPassport(ctx context.Context, holder domain.Principal, number domain.PassportNumber) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO holder_index (holder, number) VALUES ($1, $2)`,
		holder.String(), number.String(),
	)
	return mapWriteErr(err, "insert holder index")
}

func mapWriteErr(err error, op string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", op, sentinel.ErrAlreadyUsed)
		case foreignKeyViolate:
			return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
