// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id string) (domain.Account, error)
	Ledger(ctx context.Context, id string) ([]domain.Entry, error)
	Close(ctx context.Context, id string) (domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type dataEntries struct {
	Entries []domain.Entry `json:"entries"`
}

type responseEntries struct {
	Data dataEntries `json:"data,omitempty"`
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
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, web.Error(err)
	}

	return http.StatusInternalServerError, web.Error(errorspkg.ErrInternal)
}

type createRequest struct {
	OwnerID     string `json:"owner_id" binding:"required"`
	AccountType string `json:"account_type" binding:"required"`
	Currency    string `json:"currency" binding:"required,currency"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, bindError(err))

		return
	}

	account, err := h.service.Create(ctx, domain.CreateAccountParams{
		OwnerID:     req.OwnerID,
		AccountType: req.AccountType,
		Currency:    req.Currency,
	})
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(errorResponse(err))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{account}})
}

type uriRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get account with its balance.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, bindError(err))

		return
	}

	account, err := h.service.Get(ctx, req.ID)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(errorResponse(err))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// Ledger handles http request to list account entries in creation order.
func (h *Handler) Ledger(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, bindError(err))

		return
	}

	entries, err := h.service.Ledger(ctx, req.ID)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(errorResponse(err))

		return
	}

	gctx.JSON(http.StatusOK, responseEntries{Data: dataEntries{entries}})
}

// Close handles http request to close account.
func (h *Handler) Close(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, bindError(err))

		return
	}

	account, err := h.service.Close(ctx, req.ID)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(errorResponse(err))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}
