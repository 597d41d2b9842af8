// Package transactionrepo manages repository layer of transactions.
//
// Deposit, Withdraw and Transfer are atomic units: each opens one database
// transaction, locks the involved account rows, checks the ledger rules,
// writes the transaction record with its entries and commits. Any failure
// rolls back every write of the unit.
package transactionrepo

import (
	"bytes"
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/entryrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db        dbpkg.SQLInterface
	conn      *sql.DB
	isolation sql.IsolationLevel
}

// NewTxRepoPGS returns transaction RepoPGS bound to an already open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS with connection to start atomic units
// at the given isolation level.
func NewRepoPGS(db *sql.DB, isolation sql.IsolationLevel) *RepoPGS {
	return &RepoPGS{
		db:        db,
		conn:      db,
		isolation: isolation,
	}
}

// numericOutOfRange is the SQLSTATE of a value that does not fit a numeric column.
const numericOutOfRange = "22003"

const createQuery = `
INSERT INTO
    transactions (id, type, source_account_id, destination_account_id, amount, currency, status)
VALUES
    ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, type, source_account_id, destination_account_id, amount, currency, status, created_at
`

func scanTransaction(row interface{ Scan(...any) error }) (domain.Transaction, error) {
	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.Type,
		&t.SourceAccountID,
		&t.DestinationAccountID,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.CreatedAt,
	)

	return t, err
}

// Create inserts the transaction record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.New(),
		arg.Type,
		arg.SourceAccountID,
		arg.DestinationAccountID,
		arg.Amount,
		arg.Currency,
		arg.Status,
	)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code == numericOutOfRange {
				return t, domain.ErrInvalidAmount
			}

			switch pqErr.Constraint {
			case "transactions_source_account_id_fkey", "transactions_destination_account_id_fkey":
				return t, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return t, domain.ErrNonPositiveAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, type, source_account_id, destination_account_id, amount, currency, status, created_at
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id together with its entries.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransactionResult

	t, err := scanTransaction(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Str("transaction_id", id.String()).Send()

		return result, errorspkg.ErrInternal
	}

	entries, err := entryrepo.NewRepoPGS(r.db).ListByTransaction(ctx, id)
	if err != nil {
		return result, err
	}

	result.Transaction = t
	result.Entries = entries

	return result, nil
}

// unit is the set of repositories bound to one open database transaction.
type unit struct {
	accounts     *accountrepo.RepoPGS
	entries      *entryrepo.RepoPGS
	transactions *RepoPGS
}

// execTx executes fn within one database transaction.
//
// Ledger rule violations returned by fn reach the caller unchanged. Every
// other failure is logged and reported as domain.ErrTransactionFailed.
// Nothing written by fn survives unless fn and the commit succeed.
func (r *RepoPGS) execTx(ctx context.Context, fn func(u unit) error) error {
	l := zerolog.Ctx(ctx)

	if r.conn == nil {
		l.Error().Msg("atomic unit requested on a transaction bound repository")
		return domain.ErrTransactionFailed
	}

	tx, err := r.conn.BeginTx(ctx, &sql.TxOptions{Isolation: r.isolation})
	if err != nil {
		l.Error().Err(err).Send()
		return domain.ErrTransactionFailed
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Msg("rollback")
		}
	}()

	err = fn(unit{
		accounts:     accountrepo.NewTxRepoPGS(tx),
		entries:      entryrepo.NewRepoPGS(tx),
		transactions: NewTxRepoPGS(tx),
	})
	if err != nil {
		if domain.IsBusiness(err) {
			return err
		}

		l.Error().Err(err).Msg("atomic unit aborted")

		return domain.ErrTransactionFailed
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Msg("commit")
		return domain.ErrTransactionFailed
	}

	return nil
}

// lockMovable locks the account row and checks that it can take a movement
// in the given currency.
func (u unit) lockMovable(ctx context.Context, id uuid.UUID, currency string) error {
	account, err := u.accounts.GetForUpdate(ctx, id)
	if err != nil {
		return err
	}

	return account.CanMove(currency)
}

// Deposit credits the account with a new deposit transaction.
func (r *RepoPGS) Deposit(ctx context.Context, arg domain.MovementTxParams) (domain.TransactionResult, error) {
	var result domain.TransactionResult

	err := r.execTx(ctx, func(u unit) error {
		// The lock keeps a concurrent Close from slipping between the status check and the insert.
		if err := u.lockMovable(ctx, arg.AccountID, arg.Currency); err != nil {
			return err
		}

		t, err := u.transactions.Create(ctx, domain.CreateTransactionParams{
			Type:                 domain.TransactionTypeDeposit,
			DestinationAccountID: &arg.AccountID,
			Amount:               arg.Amount,
			Currency:             arg.Currency,
			Status:               domain.TransactionStatusCompleted,
		})
		if err != nil {
			return err
		}

		credit, err := u.entries.Create(ctx, domain.Credit(arg.AccountID, t.ID, arg.Amount))
		if err != nil {
			return err
		}

		result = domain.TransactionResult{Transaction: t, Entries: []domain.Entry{credit}}

		return nil
	})
	if err != nil {
		return domain.TransactionResult{}, err
	}

	return result, nil
}

// Withdraw debits the account with a new withdrawal transaction if its
// balance covers the amount.
func (r *RepoPGS) Withdraw(ctx context.Context, arg domain.MovementTxParams) (domain.TransactionResult, error) {
	var result domain.TransactionResult

	err := r.execTx(ctx, func(u unit) error {
		if err := u.lockMovable(ctx, arg.AccountID, arg.Currency); err != nil {
			return err
		}

		if err := u.ensureFunds(ctx, arg.AccountID, arg.Amount); err != nil {
			return err
		}

		t, err := u.transactions.Create(ctx, domain.CreateTransactionParams{
			Type:            domain.TransactionTypeWithdrawal,
			SourceAccountID: &arg.AccountID,
			Amount:          arg.Amount,
			Currency:        arg.Currency,
			Status:          domain.TransactionStatusCompleted,
		})
		if err != nil {
			return err
		}

		debit, err := u.entries.Create(ctx, domain.Debit(arg.AccountID, t.ID, arg.Amount))
		if err != nil {
			return err
		}

		result = domain.TransactionResult{Transaction: t, Entries: []domain.Entry{debit}}

		return nil
	})
	if err != nil {
		return domain.TransactionResult{}, err
	}

	return result, nil
}

// Transfer moves money between two accounts: one transaction, a debit on the
// source and a credit on the destination. Both entries or neither persist.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.TransferTxParams) (domain.TransactionResult, error) {
	var result domain.TransactionResult

	if arg.SourceAccountID == arg.DestinationAccountID {
		return result, domain.ErrSameAccount
	}

	err := r.execTx(ctx, func(u unit) error {
		// To avoid deadlocks lock accounts in consistent id order
		first, second := arg.SourceAccountID, arg.DestinationAccountID
		if bytes.Compare(first[:], second[:]) > 0 {
			first, second = second, first
		}

		if err := u.lockMovable(ctx, first, arg.Currency); err != nil {
			return err
		}

		if err := u.lockMovable(ctx, second, arg.Currency); err != nil {
			return err
		}

		if err := u.ensureFunds(ctx, arg.SourceAccountID, arg.Amount); err != nil {
			return err
		}

		t, err := u.transactions.Create(ctx, domain.CreateTransactionParams{
			Type:                 domain.TransactionTypeTransfer,
			SourceAccountID:      &arg.SourceAccountID,
			DestinationAccountID: &arg.DestinationAccountID,
			Amount:               arg.Amount,
			Currency:             arg.Currency,
			Status:               domain.TransactionStatusCompleted,
		})
		if err != nil {
			return err
		}

		debit, err := u.entries.Create(ctx, domain.Debit(arg.SourceAccountID, t.ID, arg.Amount))
		if err != nil {
			return err
		}

		credit, err := u.entries.Create(ctx, domain.Credit(arg.DestinationAccountID, t.ID, arg.Amount))
		if err != nil {
			return err
		}

		result = domain.TransactionResult{Transaction: t, Entries: []domain.Entry{debit, credit}}

		return nil
	})
	if err != nil {
		return domain.TransactionResult{}, err
	}

	return result, nil
}

// ensureFunds reads the balance of an account locked by this unit and fails
// with domain.ErrInsufficientFunds when it does not cover the amount.
func (u unit) ensureFunds(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) error {
	balance, err := u.entries.Balance(ctx, accountID)
	if err != nil {
		return err
	}

	if balance.LessThan(amount) {
		zerolog.Ctx(ctx).Info().
			Str("account_id", accountID.String()).
			Str("balance", balance.String()).
			Str("amount", amount.String()).
			Msg("insufficient funds")

		return domain.ErrInsufficientFunds
	}

	return nil
}
