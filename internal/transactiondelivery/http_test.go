package transactiondelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/amountpkg"
	"github.com/go-petr/pet-ledger/pkg/currencypkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("currency", currencypkg.ValidCurrency); err != nil {
			panic(err)
		}

		if err := v.RegisterValidation("amount", amountpkg.ValidAmount); err != nil {
			panic(err)
		}
	}

	os.Exit(m.Run())
}

type responseData struct {
	TransactionID uuid.UUID          `json:"transaction_id"`
	Transaction   domain.Transaction `json:"transaction"`
	Entries       []domain.Entry     `json:"entries"`
}

func newServer(t *testing.T, buildStubs func(transactionService *MockService)) *gin.Engine {
	t.Helper()

	ctrl := gomock.NewController(t)
	transactionService := NewMockService(ctrl)
	buildStubs(transactionService)

	transactionHandler := NewHandler(transactionService)

	server := gin.New()
	server.POST("/deposits", transactionHandler.Deposit)
	server.POST("/withdrawals", transactionHandler.Withdraw)
	server.POST("/transfers", transactionHandler.Transfer)
	server.GET("/transactions/:id", transactionHandler.Get)

	return server
}

func transferResult(source, destination uuid.UUID, amount string) domain.TransactionResult {
	txID := uuid.New()
	now := time.Now().Truncate(time.Second).UTC()
	a := decimal.RequireFromString(amount)

	return domain.TransactionResult{
		Transaction: domain.Transaction{
			ID:                   txID,
			Type:                 domain.TransactionTypeTransfer,
			SourceAccountID:      &source,
			DestinationAccountID: &destination,
			Amount:               a,
			Currency:             currencypkg.USD,
			Status:               domain.TransactionStatusCompleted,
			CreatedAt:            now,
		},
		Entries: []domain.Entry{
			{ID: uuid.New(), AccountID: source, TransactionID: txID, EntryType: domain.EntryTypeDebit, Amount: a.Neg(), CreatedAt: now},
			{ID: uuid.New(), AccountID: destination, TransactionID: txID, EntryType: domain.EntryTypeCredit, Amount: a, CreatedAt: now},
		},
	}
}

func depositResult(accountID uuid.UUID, amount string) domain.TransactionResult {
	txID := uuid.New()
	now := time.Now().Truncate(time.Second).UTC()
	a := decimal.RequireFromString(amount)

	return domain.TransactionResult{
		Transaction: domain.Transaction{
			ID:                   txID,
			Type:                 domain.TransactionTypeDeposit,
			DestinationAccountID: &accountID,
			Amount:               a,
			Currency:             currencypkg.USD,
			Status:               domain.TransactionStatusCompleted,
			CreatedAt:            now,
		},
		Entries: []domain.Entry{
			{ID: uuid.New(), AccountID: accountID, TransactionID: txID, EntryType: domain.EntryTypeCredit, Amount: a, CreatedAt: now},
		},
	}
}

func send(t *testing.T, server *gin.Engine, method, url string, body any) (*httptest.ResponseRecorder, web.Response) {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}

		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	res := web.Response{Data: &responseData{}}
	if err := json.NewDecoder(bytes.NewReader(recorder.Body.Bytes())).Decode(&res); err != nil {
		t.Errorf("Decoding response body error: %v", err)
	}

	return recorder, res
}

func TestDeposit(t *testing.T) {
	accountID := uuid.New()
	amount := "100.25"
	result := depositResult(accountID, amount)

	testCases := []struct {
		name           string
		requestBody    gin.H
		buildStubs     func(transactionService *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			requestBody: gin.H{
				"account_id": accountID.String(),
				"amount":     amount,
				"currency":   currencypkg.USD,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(domain.CreateDepositParams{
						AccountID: accountID.String(),
						Amount:    amount,
						Currency:  currencypkg.USD,
					})).
					Times(1).
					Return(result, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "InvalidAccountID",
			requestBody: gin.H{
				"account_id": "acc-1",
				"amount":     amount,
				"currency":   currencypkg.USD,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().Deposit(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "AccountID must be a valid UUID",
		},
		{
			name: "NegativeAmount",
			requestBody: gin.H{
				"account_id": accountID.String(),
				"amount":     "-5",
				"currency":   currencypkg.USD,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().Deposit(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a positive decimal below 1e16 with at most 4 fractional digits",
		},
		{
			name: "MissingCurrency",
			requestBody: gin.H{
				"account_id": accountID.String(),
				"amount":     amount,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().Deposit(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Currency field is required",
		},
		{
			name: "ErrAccountNotFound",
			requestBody: gin.H{
				"account_id": accountID.String(),
				"amount":     amount,
				"currency":   currencypkg.USD,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Deposit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransactionResult{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name: "ErrCurrencyMismatch",
			requestBody: gin.H{
				"account_id": accountID.String(),
				"amount":     amount,
				"currency":   currencypkg.EUR,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Deposit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransactionResult{}, domain.ErrCurrencyMismatch)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrCurrencyMismatch.Error(),
		},
		{
			name: "ErrTransactionFailed",
			requestBody: gin.H{
				"account_id": accountID.String(),
				"amount":     amount,
				"currency":   currencypkg.USD,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Deposit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransactionResult{}, domain.ErrTransactionFailed)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      domain.ErrTransactionFailed.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newServer(t, tc.buildStubs)
			recorder, res := send(t, server, http.MethodPost, "/deposits", tc.requestBody)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if tc.wantStatusCode != http.StatusCreated {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			got := res.Data.(*responseData)

			if got.TransactionID != result.Transaction.ID {
				t.Errorf("transaction_id=%v, want %v", got.TransactionID, result.Transaction.ID)
			}

			compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
			if diff := cmp.Diff(result.Transaction, got.Transaction, compareCreatedAt); diff != "" {
				t.Errorf("transaction mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(result.Entries, got.Entries, compareCreatedAt); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	accountID := uuid.New()

	testCases := []struct {
		name           string
		buildStubs     func(transactionService *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(domain.CreateWithdrawalParams{
						AccountID: accountID.String(),
						Amount:    "30",
						Currency:  currencypkg.USD,
					})).
					Times(1).
					Return(depositResult(accountID, "30"), nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "ErrInsufficientFunds",
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Withdraw(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransactionResult{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
		{
			name: "ErrAccountClosed",
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Withdraw(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransactionResult{}, domain.ErrAccountClosed)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrAccountClosed.Error(),
		},
		{
			name: "InternalServerError",
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Withdraw(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransactionResult{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newServer(t, tc.buildStubs)
			recorder, res := send(t, server, http.MethodPost, "/withdrawals", gin.H{
				"account_id": accountID.String(),
				"amount":     "30",
				"currency":   currencypkg.USD,
			})

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if res.Error != tc.wantError {
				t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	source := uuid.New()
	destination := uuid.New()
	amount := "50"
	result := transferResult(source, destination, amount)

	testCases := []struct {
		name           string
		requestBody    gin.H
		buildStubs     func(transactionService *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			requestBody: gin.H{
				"source_account_id":      source.String(),
				"destination_account_id": destination.String(),
				"amount":                 amount,
				"currency":               currencypkg.USD,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(domain.CreateTransferParams{
						SourceAccountID:      source.String(),
						DestinationAccountID: destination.String(),
						Amount:               amount,
						Currency:             currencypkg.USD,
					})).
					Times(1).
					Return(result, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "SameAccount",
			requestBody: gin.H{
				"source_account_id":      source.String(),
				"destination_account_id": source.String(),
				"amount":                 amount,
				"currency":               currencypkg.USD,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "DestinationAccountID must differ from SourceAccountID",
		},
		{
			name: "TooPreciseAmount",
			requestBody: gin.H{
				"source_account_id":      source.String(),
				"destination_account_id": destination.String(),
				"amount":                 "0.00001",
				"currency":               currencypkg.USD,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a positive decimal below 1e16 with at most 4 fractional digits",
		},
		{
			name: "ErrInsufficientFunds",
			requestBody: gin.H{
				"source_account_id":      source.String(),
				"destination_account_id": destination.String(),
				"amount":                 "1000000",
				"currency":               currencypkg.USD,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Transfer(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransactionResult{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newServer(t, tc.buildStubs)
			recorder, res := send(t, server, http.MethodPost, "/transfers", tc.requestBody)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if tc.wantStatusCode != http.StatusCreated {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			got := res.Data.(*responseData)

			if len(got.Entries) != 2 {
				t.Fatalf("len(entries)=%d, want 2", len(got.Entries))
			}

			if sum := got.Entries[0].Amount.Add(got.Entries[1].Amount); !sum.IsZero() {
				t.Errorf("entries sum=%v, want 0", sum)
			}

			if diff := cmp.Diff(result.Transaction, got.Transaction, cmpopts.EquateApproxTime(time.Second)); diff != "" {
				t.Errorf("transaction mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGet(t *testing.T) {
	result := depositResult(uuid.New(), "10")

	testCases := []struct {
		name           string
		id             string
		buildStubs     func(transactionService *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			id:   result.Transaction.ID.String(),
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Get(gomock.Any(), gomock.Eq(result.Transaction.ID.String())).
					Times(1).
					Return(result, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InvalidID",
			id:   "tx-1",
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID must be a valid UUID",
		},
		{
			name: "ErrTransactionNotFound",
			id:   result.Transaction.ID.String(),
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransactionResult{}, domain.ErrTransactionNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrTransactionNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newServer(t, tc.buildStubs)
			recorder, res := send(t, server, http.MethodGet, "/transactions/"+tc.id, nil)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			if res.Error != tc.wantError {
				t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
			}
		})
	}
}
