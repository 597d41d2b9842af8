// Package domain provides definitions of all ledger entities and their errors.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

// Account statuses.
const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusClosed AccountStatus = "closed"
)

// Account holds account data. Balance is never stored, it is derived from
// the account's ledger entries when the account is read.
type Account struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     string          `json:"owner_id"`
	AccountType string          `json:"account_type"`
	Currency    string          `json:"currency"`
	Status      AccountStatus   `json:"status"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	OwnerID     string `json:"owner_id"`
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
}

// CanMove reports whether money can be moved in or out of the account in the given currency.
func (a Account) CanMove(currency string) error {
	if a.Status != AccountStatusActive {
		return ErrAccountClosed
	}

	if a.Currency != currency {
		return ErrCurrencyMismatch
	}

	return nil
}
