// Package helpers seeds the database for integration tests.
package helpers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// SeedAccount creates an active account with the given currency.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, currency string) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{
		OwnerID:     randompkg.Owner(),
		AccountType: randompkg.AccountType(),
		Currency:    currency,
	}

	account, err := accountrepo.NewTxRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedDeposit deposits amount into the account through the transaction engine.
func SeedDeposit(t *testing.T, db *sql.DB, account domain.Account, amount string) domain.TransactionResult {
	t.Helper()

	arg := domain.MovementTxParams{
		AccountID: account.ID,
		Amount:    decimal.RequireFromString(amount),
		Currency:  account.Currency,
	}

	result, err := transactionrepo.NewRepoPGS(db, sql.LevelReadCommitted).Deposit(context.Background(), arg)
	if err != nil {
		t.Fatalf("transactionRepo.Deposit(context.Background(), %+v) returned error: %v", arg, err)
	}

	return result
}

// SeedFundedAccount creates an account holding the given balance.
func SeedFundedAccount(t *testing.T, db *sql.DB, currency, balance string) domain.Account {
	t.Helper()

	account := SeedAccount(t, db, currency)
	SeedDeposit(t, db, account, balance)

	account.Balance = decimal.RequireFromString(balance)

	return account
}
