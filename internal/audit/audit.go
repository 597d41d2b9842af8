// Package audit checks the ledger invariants over the whole store.
//
// It verifies every transaction wrote entries of the expected shape, that no
// account balance is negative and that the entries sum up to the money that
// entered minus the money that left the ledger.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Violation describes one broken invariant.
type Violation struct {
	Subject string    `json:"subject"` // "transaction" or "account"
	ID      uuid.UUID `json:"id"`
	Reason  string    `json:"reason"`
}

// Report is the outcome of an audit run.
type Report struct {
	Transactions int             `json:"transactions"`
	Violations   []Violation     `json:"violations"`
	EntriesTotal decimal.Decimal `json:"entries_total"`
	Deposited    decimal.Decimal `json:"deposited"`
	Withdrawn    decimal.Decimal `json:"withdrawn"`
}

// Balanced reports whether the audit found no violation and money is conserved.
func (r Report) Balanced() bool {
	return len(r.Violations) == 0 && r.EntriesTotal.Equal(r.Deposited.Sub(r.Withdrawn))
}

// Auditor runs audits on a database connection.
type Auditor struct {
	conn *sql.DB
}

// New returns Auditor.
func New(conn *sql.DB) *Auditor {
	return &Auditor{conn: conn}
}

// shape aggregates the entries written by one transaction.
type shape struct {
	id      uuid.UUID
	txType  domain.TransactionType
	amount  decimal.Decimal
	entries int
	credits int
	debits  int
	sum     decimal.Decimal
	maxAbs  decimal.Decimal
	minAbs  decimal.Decimal
}

// check returns the reason the shape is wrong, or "" when it is fine.
func (s shape) check() string {
	switch s.txType {
	case domain.TransactionTypeDeposit:
		if s.entries != 1 || s.credits != 1 {
			return fmt.Sprintf("deposit has %d entries (%d credits), want one credit", s.entries, s.credits)
		}

		if !s.sum.Equal(s.amount) {
			return fmt.Sprintf("deposit entry is %s, want %s", s.sum, s.amount)
		}
	case domain.TransactionTypeWithdrawal:
		if s.entries != 1 || s.debits != 1 {
			return fmt.Sprintf("withdrawal has %d entries (%d debits), want one debit", s.entries, s.debits)
		}

		if !s.sum.Equal(s.amount.Neg()) {
			return fmt.Sprintf("withdrawal entry is %s, want %s", s.sum, s.amount.Neg())
		}
	case domain.TransactionTypeTransfer:
		if s.entries != 2 || s.credits != 1 || s.debits != 1 {
			return fmt.Sprintf("transfer has %d entries (%d credits, %d debits), want one of each",
				s.entries, s.credits, s.debits)
		}

		if !s.sum.IsZero() {
			return fmt.Sprintf("transfer entries sum to %s, want 0", s.sum)
		}

		if !s.maxAbs.Equal(s.amount) || !s.minAbs.Equal(s.amount) {
			return fmt.Sprintf("transfer entries differ from amount %s", s.amount)
		}
	default:
		return fmt.Sprintf("unknown transaction type %q", s.txType)
	}

	return ""
}

const shapesQuery = `
SELECT
	t.id,
	t.type,
	t.amount,
	COUNT(e.id),
	COUNT(e.id) FILTER (WHERE e.amount > 0),
	COUNT(e.id) FILTER (WHERE e.amount < 0),
	COALESCE(SUM(e.amount), 0),
	COALESCE(MAX(ABS(e.amount)), 0),
	COALESCE(MIN(ABS(e.amount)), 0)
FROM transactions t
LEFT JOIN ledger_entries e ON e.transaction_id = t.id
GROUP BY t.id
ORDER BY t.created_at, t.id
`

const negativeBalancesQuery = `
SELECT account_id, SUM(amount)
FROM ledger_entries
GROUP BY account_id
HAVING SUM(amount) < 0
`

const totalsQuery = `
SELECT
	(SELECT COALESCE(SUM(amount), 0) FROM ledger_entries),
	(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = 'deposit' AND status = 'completed'),
	(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = 'withdrawal' AND status = 'completed')
`

// Run scans the store inside one read-only snapshot and returns the report.
func (a *Auditor) Run(ctx context.Context) (Report, error) {
	l := zerolog.Ctx(ctx)

	var report Report

	tx, err := a.conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		l.Error().Err(err).Send()
		return report, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := checkShapes(ctx, tx, &report); err != nil {
		l.Error().Err(err).Msg("checkShapes")
		return Report{}, errorspkg.ErrInternal
	}

	if err := checkBalances(ctx, tx, &report); err != nil {
		l.Error().Err(err).Msg("checkBalances")
		return Report{}, errorspkg.ErrInternal
	}

	err = tx.QueryRowContext(ctx, totalsQuery).Scan(&report.EntriesTotal, &report.Deposited, &report.Withdrawn)
	if err != nil {
		l.Error().Err(err).Msg("totals")
		return Report{}, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return Report{}, errorspkg.ErrInternal
	}

	return report, nil
}

func checkShapes(ctx context.Context, tx *sql.Tx, report *Report) error {
	rows, err := tx.QueryContext(ctx, shapesQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s shape
		if err := rows.Scan(
			&s.id,
			&s.txType,
			&s.amount,
			&s.entries,
			&s.credits,
			&s.debits,
			&s.sum,
			&s.maxAbs,
			&s.minAbs,
		); err != nil {
			return err
		}

		report.Transactions++

		if reason := s.check(); reason != "" {
			report.Violations = append(report.Violations, Violation{Subject: "transaction", ID: s.id, Reason: reason})
		}
	}

	return rows.Err()
}

func checkBalances(ctx context.Context, tx *sql.Tx, report *Report) error {
	rows, err := tx.QueryContext(ctx, negativeBalancesQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID uuid.UUID
			balance   decimal.Decimal
		)

		if err := rows.Scan(&accountID, &balance); err != nil {
			return err
		}

		report.Violations = append(report.Violations, Violation{
			Subject: "account",
			ID:      accountID,
			Reason:  "negative balance " + balance.String(),
		})
	}

	return rows.Err()
}
