// Package entryrepo manages repository layer of ledger entries.
//
// Entries are append-only: the package offers no update or delete. The
// account balance is computed here as well, by summing the account's entries.
package entryrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates entry repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns entry RepoPGS.
//
// Pass a *sql.Tx to read balances and append entries inside an atomic unit.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const createQuery = `
INSERT INTO
    ledger_entries (id, account_id, transaction_id, entry_type, amount)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING id, account_id, transaction_id, entry_type, amount, created_at
`

// Create appends the entry and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateEntryParams) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.New(),
		arg.AccountID,
		arg.TransactionID,
		arg.EntryType,
		arg.Amount,
	)

	var e domain.Entry

	err := row.Scan(
		&e.ID,
		&e.AccountID,
		&e.TransactionID,
		&e.EntryType,
		&e.Amount,
		&e.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)
		return e, errorspkg.ErrInternal
	}

	return e, nil
}

const balanceQuery = `
SELECT COALESCE(SUM(amount), 0)
FROM ledger_entries
WHERE account_id = $1
`

// Balance returns the sum of the signed amounts of all entries of the account.
// It is zero when the account has no entries.
func (r *RepoPGS) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var balance decimal.Decimal

	if err := r.db.QueryRowContext(ctx, balanceQuery, accountID).Scan(&balance); err != nil {
		l.Error().Err(err).Str("account_id", accountID.String()).Send()
		return decimal.Zero, errorspkg.ErrInternal
	}

	return balance, nil
}

const listByAccountQuery = `
SELECT id, account_id, transaction_id, entry_type, amount, created_at
FROM ledger_entries
WHERE account_id = $1
ORDER BY created_at, seq
`

// ListByAccount returns all entries of the account in creation order.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Entry, error) {
	return r.list(ctx, listByAccountQuery, accountID)
}

const listByTransactionQuery = `
SELECT id, account_id, transaction_id, entry_type, amount, created_at
FROM ledger_entries
WHERE transaction_id = $1
ORDER BY created_at, seq
`

// ListByTransaction returns the entries written by the transaction.
func (r *RepoPGS) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.Entry, error) {
	return r.list(ctx, listByTransactionQuery, transactionID)
}

func (r *RepoPGS) list(ctx context.Context, query string, id uuid.UUID) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.TransactionID,
			&e.EntryType,
			&e.Amount,
			&e.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
