package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides SERVER_ADDRESS")
}

func runServe(cmd *cobra.Command, args []string) error {
	config, logger, err := setup()
	if err != nil {
		return err
	}

	if serveAddr != "" {
		config.ServerAddress = serveAddr
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource, config.DBMaxOpenConns)
	if err != nil {
		logger.Error().Err(err).Msg("cannot connect to database")
		return err
	}
	defer db.Close()

	if config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Error().Err(err).Msg("cannot create server")
		return err
	}

	logger.Info().Str("address", config.ServerAddress).Msg("LEDGER API SERVER HAS STARTED")

	if err := server.Engine.Run(config.ServerAddress); err != nil {
		logger.Error().Err(err).Msg("cannot start server")
		return err
	}

	return nil
}
