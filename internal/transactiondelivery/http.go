// Package transactiondelivery manages delivery layer of deposits, withdrawals and transfers.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Deposit(ctx context.Context, arg domain.CreateDepositParams) (domain.TransactionResult, error)
	Withdraw(ctx context.Context, arg domain.CreateWithdrawalParams) (domain.TransactionResult, error)
	Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransactionResult, error)
	Get(ctx context.Context, id string) (domain.TransactionResult, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type data struct {
	TransactionID uuid.UUID          `json:"transaction_id"`
	Transaction   domain.Transaction `json:"transaction"`
	Entries       []domain.Entry     `json:"entries"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

func newResponse(result domain.TransactionResult) response {
	return response{
		Data: data{
			TransactionID: result.Transaction.ID,
			Transaction:   result.Transaction,
			Entries:       result.Entries,
		},
	}
}

func bindError(err error) web.Response {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return web.Response{Error: field.Field() + web.GetErrorMsg(field)}
	}

	return web.Error(err)
}

func errorResponse(err error) (int, web.Response) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, web.Error(err)
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound, web.Error(err)
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, web.Error(err)
	case errors.Is(err, domain.ErrTransactionFailed):
		return http.StatusInternalServerError, web.Error(err)
	}

	return http.StatusInternalServerError, web.Error(errorspkg.ErrInternal)
}

type movementRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	Amount    string `json:"amount" binding:"required,amount"`
	Currency  string `json:"currency" binding:"required,currency"`
}

// Deposit handles http request to deposit money into an account.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req movementRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, bindError(err))

		return
	}

	result, err := h.service.Deposit(ctx, domain.CreateDepositParams{
		AccountID: req.AccountID,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(errorResponse(err))

		return
	}

	gctx.JSON(http.StatusCreated, newResponse(result))
}

// Withdraw handles http request to withdraw money from an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req movementRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, bindError(err))

		return
	}

	result, err := h.service.Withdraw(ctx, domain.CreateWithdrawalParams{
		AccountID: req.AccountID,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(errorResponse(err))

		return
	}

	gctx.JSON(http.StatusCreated, newResponse(result))
}

type transferRequest struct {
	SourceAccountID      string `json:"source_account_id" binding:"required,uuid"`
	DestinationAccountID string `json:"destination_account_id" binding:"required,uuid,nefield=SourceAccountID"`
	Amount               string `json:"amount" binding:"required,amount"`
	Currency             string `json:"currency" binding:"required,currency"`
}

// Transfer handles http request to move money between two accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, bindError(err))

		return
	}

	result, err := h.service.Transfer(ctx, domain.CreateTransferParams{
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		Currency:             req.Currency,
	})
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(errorResponse(err))

		return
	}

	gctx.JSON(http.StatusCreated, newResponse(result))
}

type getRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get a transaction with its entries.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, bindError(err))

		return
	}

	result, err := h.service.Get(ctx, req.ID)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(errorResponse(err))

		return
	}

	gctx.JSON(http.StatusOK, newResponse(result))
}
