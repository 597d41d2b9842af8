package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of money movement.
type TransactionType string

// Transaction types.
const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// TransactionStatus is the outcome of a transaction.
type TransactionStatus string

// Transaction statuses.
const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction holds a money movement. It is never edited once created.
type Transaction struct {
	ID                   uuid.UUID         `json:"id"`
	Type                 TransactionType   `json:"type"`
	SourceAccountID      *uuid.UUID        `json:"source_account_id,omitempty"`
	DestinationAccountID *uuid.UUID        `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal   `json:"amount"` // always positive
	Currency             string            `json:"currency"`
	Status               TransactionStatus `json:"status"`
	CreatedAt            time.Time         `json:"created_at"`
}

// CreateTransactionParams is the input data to insert a transaction record.
type CreateTransactionParams struct {
	Type                 TransactionType
	SourceAccountID      *uuid.UUID
	DestinationAccountID *uuid.UUID
	Amount               decimal.Decimal
	Currency             string
	Status               TransactionStatus
}

// TransactionResult is a transaction together with the entries it wrote.
type TransactionResult struct {
	Transaction Transaction `json:"transaction"`
	Entries     []Entry     `json:"entries"`
}

// CreateDepositParams is the raw request to deposit money into an account.
type CreateDepositParams struct {
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// CreateWithdrawalParams is the raw request to withdraw money from an account.
type CreateWithdrawalParams struct {
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// CreateTransferParams is the raw request to move money between two accounts.
type CreateTransferParams struct {
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               string `json:"amount"`
	Currency             string `json:"currency"`
}

// MovementTxParams is a validated single-account movement (deposit or withdrawal).
type MovementTxParams struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Currency  string
}

// TransferTxParams is a validated transfer between two distinct accounts.
type TransferTxParams struct {
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
	Currency             string
}
