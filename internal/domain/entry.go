package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType tells whether an entry adds money to the account or takes it away.
type EntryType string

// Entry types.
const (
	EntryTypeCredit EntryType = "credit"
	EntryTypeDebit  EntryType = "debit"
)

// Entry is an immutable ledger line for one account.
type Entry struct {
	ID            uuid.UUID       `json:"id"`
	AccountID     uuid.UUID       `json:"account_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	EntryType     EntryType       `json:"entry_type"`
	Amount        decimal.Decimal `json:"amount"` // credit is positive, debit is negative
	CreatedAt     time.Time       `json:"created_at"`
}

// CreateEntryParams is the input data to append an entry.
type CreateEntryParams struct {
	AccountID     uuid.UUID
	TransactionID uuid.UUID
	EntryType     EntryType
	Amount        decimal.Decimal
}

// Credit returns params of a credit entry of the given magnitude.
func Credit(accountID, transactionID uuid.UUID, amount decimal.Decimal) CreateEntryParams {
	return CreateEntryParams{
		AccountID:     accountID,
		TransactionID: transactionID,
		EntryType:     EntryTypeCredit,
		Amount:        amount.Abs(),
	}
}

// Debit returns params of a debit entry of the given magnitude.
func Debit(accountID, transactionID uuid.UUID, amount decimal.Decimal) CreateEntryParams {
	return CreateEntryParams{
		AccountID:     accountID,
		TransactionID: transactionID,
		EntryType:     EntryTypeDebit,
		Amount:        amount.Abs().Neg(),
	}
}
