// Package cmd holds the ledger CLI commands.
package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Double-entry ledger for monetary accounts",
	Long: `Ledger keeps accounts whose balances are derived from immutable entries.

Commands:
  serve  - run the HTTP API
  audit  - check the ledger invariants over the whole store`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "./configs", "directory holding app.env")
}

func setup() (configpkg.Config, zerolog.Logger, error) {
	config, err := configpkg.Load(configDir)
	if err != nil {
		return config, zerolog.Nop(), err
	}

	return config, middleware.CreateLogger(config), nil
}
