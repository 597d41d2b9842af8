// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/entryrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db        dbpkg.SQLInterface
	conn      *sql.DB
	isolation sql.IsolationLevel
}

// NewTxRepoPGS returns account RepoPGS bound to an already open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns account RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB, isolation sql.IsolationLevel) *RepoPGS {
	return &RepoPGS{
		db:        db,
		conn:      db,
		isolation: isolation,
	}
}

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.AccountType,
		&a.Currency,
		&a.Status,
		&a.CreatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (id, owner_id, account_type, currency, status)
VALUES
    ($1, $2, $3, $4, 'active')
RETURNING id, owner_id, account_type, currency, status, created_at
`

// Create creates the active account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, uuid.New(), arg.OwnerID, arg.AccountType, arg.Currency)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)
		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, owner_id, account_type, currency, status, created_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.get(ctx, getQuery, id)
}

const getForUpdateQuery = `
SELECT
	id, owner_id, account_type, currency, status, created_at
FROM accounts
WHERE id = $1
FOR UPDATE
`

// GetForUpdate returns the account with the given id and locks its row
// until the surrounding transaction ends.
//
// Every check-then-write sequence on an account (balance check followed by a
// debit, or closing) must start with it, so concurrent writers of the same
// account queue up on the row lock instead of acting on a stale balance.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.get(ctx, getForUpdateQuery, id)
}

func (r *RepoPGS) get(ctx context.Context, query string, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Str("account_id", id.String()).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const closeQuery = `
UPDATE accounts
SET status = 'closed'
WHERE id = $1
RETURNING id, owner_id, account_type, currency, status, created_at
`

// Close marks the account as closed if it is active and holds no money.
//
// The lock, the balance read and the update run in one transaction so a
// concurrent deposit either lands before the balance read or sees the
// closed status.
func (r *RepoPGS) Close(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var result domain.Account

	if r.conn == nil {
		l.Error().Msg("Close called on a transaction bound repository")
		return result, errorspkg.ErrInternal
	}

	tx, err := r.conn.BeginTx(ctx, &sql.TxOptions{Isolation: r.isolation})
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	txAccounts := NewTxRepoPGS(tx)
	txEntries := entryrepo.NewRepoPGS(tx)

	account, err := txAccounts.GetForUpdate(ctx, id)
	if err != nil {
		return result, err
	}

	if account.Status != domain.AccountStatusActive {
		return result, domain.ErrAccountClosed
	}

	balance, err := txEntries.Balance(ctx, id)
	if err != nil {
		return result, err
	}

	if !balance.IsZero() {
		return result, domain.ErrNonZeroBalance
	}

	result, err = scanAccount(tx.QueryRowContext(ctx, closeQuery, id))
	if err != nil {
		l.Error().Err(err).Str("account_id", id.String()).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	return result, nil
}
