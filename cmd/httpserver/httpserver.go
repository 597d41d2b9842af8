// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/entryrepo"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/transactiondelivery"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/internal/transactionservice"
	"github.com/go-petr/pet-ledger/pkg/amountpkg"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/currencypkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// RegisterValidators adds the ledger specific binding rules to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("currency", currencypkg.ValidCurrency); err != nil {
		return fmt.Errorf("cannot register currency validator: %w", err)
	}

	if err := v.RegisterValidation("amount", amountpkg.ValidAmount); err != nil {
		return fmt.Errorf("cannot register amount validator: %w", err)
	}

	return nil
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	isolation, err := dbpkg.ParseIsolation(config.DBIsolation)
	if err != nil {
		return nil, err
	}

	accountRepo := accountrepo.NewRepoPGS(conn, isolation)
	entryRepo := entryrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn, isolation)

	accountService := accountservice.New(accountRepo, entryRepo)
	transactionService := transactionservice.New(transactionRepo)

	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)
	healthHandler := newHealthHandler(conn)

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.GET("/", healthHandler.Check)

	engine.POST("/accounts", accountHandler.Create)
	engine.GET("/accounts/:id", accountHandler.Get)
	engine.GET("/accounts/:id/ledger", accountHandler.Ledger)
	engine.POST("/accounts/:id/close", accountHandler.Close)

	engine.POST("/deposits", transactionHandler.Deposit)
	engine.POST("/withdrawals", transactionHandler.Withdraw)
	engine.POST("/transfers", transactionHandler.Transfer)
	engine.GET("/transactions/:id", transactionHandler.Get)

	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
