package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/go-petr/pet-ledger/internal/audit"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

var errUnbalanced = errors.New("ledger is not balanced")

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the ledger invariants over the whole store",
	Long: `Audit scans every transaction and entry inside one read-only snapshot.

It reports transactions whose entries do not match their type, accounts with
a negative balance and the global totals. The command fails when any
violation is found or the entries do not sum to deposits minus withdrawals.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	config, logger, err := setup()
	if err != nil {
		return err
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource, 1)
	if err != nil {
		logger.Error().Err(err).Msg("cannot connect to database")
		return err
	}
	defer db.Close()

	ctx := logger.WithContext(cmd.Context())

	report, err := audit.New(db).Run(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if err := enc.Encode(report); err != nil {
		return err
	}

	if !report.Balanced() {
		logger.Error().Int("violations", len(report.Violations)).Msg(errUnbalanced.Error())
		return errUnbalanced
	}

	return nil
}
