// Package transactionservice manages business logic layer of money movements.
package transactionservice

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/amountpkg"
	"github.com/go-petr/pet-ledger/pkg/currencypkg"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	Deposit(ctx context.Context, arg domain.MovementTxParams) (domain.TransactionResult, error)
	Withdraw(ctx context.Context, arg domain.MovementTxParams) (domain.TransactionResult, error)
	Transfer(ctx context.Context, arg domain.TransferTxParams) (domain.TransactionResult, error)
	Get(ctx context.Context, id uuid.UUID) (domain.TransactionResult, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo Repo
}

// New returns transaction service struct to manage money movements.
func New(tr Repo) *Service {
	return &Service{repo: tr}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}

	return parsed, nil
}

func parseAmount(amount string) (decimal.Decimal, error) {
	d, err := amountpkg.Parse(amount)
	if err != nil {
		if errors.Is(err, amountpkg.ErrNotPositive) {
			return d, domain.ErrNonPositiveAmount
		}

		return d, domain.ErrInvalidAmount
	}

	return d, nil
}

func validMovement(ctx context.Context, accountID, amount, currency string) (domain.MovementTxParams, error) {
	l := zerolog.Ctx(ctx)

	accountID = strings.TrimSpace(accountID)
	amount = strings.TrimSpace(amount)
	currency = strings.TrimSpace(currency)

	if accountID == "" || amount == "" || currency == "" {
		l.Info().Err(domain.ErrMissingField).Send()
		return domain.MovementTxParams{}, domain.ErrMissingField
	}

	id, err := parseID(accountID)
	if err != nil {
		l.Info().Err(err).Str("account_id", accountID).Send()
		return domain.MovementTxParams{}, err
	}

	amountDecimal, err := parseAmount(amount)
	if err != nil {
		l.Info().Err(err).Str("amount", amount).Send()
		return domain.MovementTxParams{}, err
	}

	if !currencypkg.IsSupportedCurrency(currency) {
		l.Info().Err(domain.ErrUnsupportedCurrency).Str("currency", currency).Send()
		return domain.MovementTxParams{}, domain.ErrUnsupportedCurrency
	}

	return domain.MovementTxParams{
		AccountID: id,
		Amount:    amountDecimal,
		Currency:  currency,
	}, nil
}

// Deposit validates the request and credits the account.
func (s *Service) Deposit(ctx context.Context, arg domain.CreateDepositParams) (domain.TransactionResult, error) {
	params, err := validMovement(ctx, arg.AccountID, arg.Amount, arg.Currency)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	return s.repo.Deposit(ctx, params)
}

// Withdraw validates the request and debits the account if it holds enough money.
func (s *Service) Withdraw(ctx context.Context, arg domain.CreateWithdrawalParams) (domain.TransactionResult, error) {
	params, err := validMovement(ctx, arg.AccountID, arg.Amount, arg.Currency)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	return s.repo.Withdraw(ctx, params)
}

// Transfer validates the request and moves money from the source account to
// the destination account.
func (s *Service) Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	if strings.TrimSpace(arg.DestinationAccountID) == "" {
		l.Info().Err(domain.ErrMissingField).Send()
		return domain.TransactionResult{}, domain.ErrMissingField
	}

	source, err := validMovement(ctx, arg.SourceAccountID, arg.Amount, arg.Currency)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	destinationID, err := parseID(strings.TrimSpace(arg.DestinationAccountID))
	if err != nil {
		l.Info().Err(err).Str("destination_account_id", arg.DestinationAccountID).Send()
		return domain.TransactionResult{}, err
	}

	if source.AccountID == destinationID {
		l.Info().Err(domain.ErrSameAccount).Send()
		return domain.TransactionResult{}, domain.ErrSameAccount
	}

	return s.repo.Transfer(ctx, domain.TransferTxParams{
		SourceAccountID:      source.AccountID,
		DestinationAccountID: destinationID,
		Amount:               source.Amount,
		Currency:             source.Currency,
	})
}

// Get returns the transaction with its entries.
func (s *Service) Get(ctx context.Context, id string) (domain.TransactionResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.TransactionResult{}, domain.ErrMissingField
	}

	transactionID, err := parseID(id)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	return s.repo.Get(ctx, transactionID)
}
