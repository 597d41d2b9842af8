// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/currencypkg"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	Close(ctx context.Context, id uuid.UUID) (domain.Account, error)
}

// EntryRepo provides read access to ledger entries needed to derive balances.
type EntryRepo interface {
	Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Entry, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo      Repo
	entryRepo EntryRepo
}

// New returns account service struct to manage account business logic.
func New(ar Repo, er EntryRepo) *Service {
	return &Service{
		repo:      ar,
		entryRepo: er,
	}
}

// ParseID converts a textual account id into a UUID.
func ParseID(id string) (uuid.UUID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.Nil, domain.ErrMissingField
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}

	return parsed, nil
}

// Create validates the input and creates an active account with zero balance.
func (s *Service) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	arg.OwnerID = strings.TrimSpace(arg.OwnerID)
	arg.AccountType = strings.TrimSpace(arg.AccountType)
	arg.Currency = strings.TrimSpace(arg.Currency)

	if arg.OwnerID == "" || arg.AccountType == "" || arg.Currency == "" {
		l.Info().Msgf("Create(ctx, %+v): %v", arg, domain.ErrMissingField)
		return domain.Account{}, domain.ErrMissingField
	}

	if !currencypkg.IsSupportedCurrency(arg.Currency) {
		l.Info().Str("currency", arg.Currency).Msg(domain.ErrUnsupportedCurrency.Error())
		return domain.Account{}, domain.ErrUnsupportedCurrency
	}

	account, err := s.repo.Create(ctx, arg)
	if err != nil {
		return domain.Account{}, err
	}

	account.Balance = decimal.Zero

	return account, nil
}

// Get returns the account with its balance derived from the ledger.
func (s *Service) Get(ctx context.Context, id string) (domain.Account, error) {
	accountID, err := ParseID(id)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	account.Balance, err = s.entryRepo.Balance(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

// Balance returns the sum of all entries of the account.
func (s *Service) Balance(ctx context.Context, id string) (decimal.Decimal, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// Ledger returns every entry of the account ordered by creation time.
// An id without entries, known or not, yields an empty list.
func (s *Service) Ledger(ctx context.Context, id string) ([]domain.Entry, error) {
	accountID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	return s.entryRepo.ListByAccount(ctx, accountID)
}

// Close closes the account. Only active accounts with zero balance can be closed.
func (s *Service) Close(ctx context.Context, id string) (domain.Account, error) {
	accountID, err := ParseID(id)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.repo.Close(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	account.Balance = decimal.Zero

	return account, nil
}
