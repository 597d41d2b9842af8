package domain

import "errors"

// Validation errors. The caller has to fix the request, nothing was written.
var (
	// ErrMissingField indicates that a required field is absent or blank.
	ErrMissingField = errors.New("missing required fields")
	// ErrInvalidID indicates that an identifier is not a valid UUID.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidAmount indicates that the amount is not a decimal number below 1e16 with at most 4 fractional digits.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount indicates that the amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrUnsupportedCurrency indicates that the currency is not supported.
	ErrUnsupportedCurrency = errors.New("currency is not supported")
	// ErrSameAccount indicates a transfer from an account to itself.
	ErrSameAccount = errors.New("source and destination cannot be same")
	// ErrCurrencyMismatch indicates that the request currency differs from the account currency.
	ErrCurrencyMismatch = errors.New("account currency mismatch")
	// ErrAccountClosed indicates that the account no longer accepts money movements.
	ErrAccountClosed = errors.New("account is closed")
	// ErrNonZeroBalance indicates an attempt to close an account that still holds money.
	ErrNonZeroBalance = errors.New("account balance is not zero")
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInsufficientFunds indicates that the account balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrTransactionFailed indicates a store failure inside an atomic unit.
	// All writes of the unit were rolled back.
	ErrTransactionFailed = errors.New("transaction failed")
)

var validationErrors = []error{
	ErrMissingField,
	ErrInvalidID,
	ErrInvalidAmount,
	ErrNonPositiveAmount,
	ErrUnsupportedCurrency,
	ErrSameAccount,
	ErrCurrencyMismatch,
	ErrAccountClosed,
	ErrNonZeroBalance,
}

// IsValidation reports whether err is caused by invalid caller input.
func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}

	return false
}

// IsBusiness reports whether err is a ledger rule violation that must reach
// the caller unchanged, as opposed to a store failure.
func IsBusiness(err error) bool {
	return IsValidation(err) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrInsufficientFunds)
}
