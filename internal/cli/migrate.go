package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"construction-sales-ledger/internal/config"
	"construction-sales-ledger/internal/repository/sqlstore"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema",
	Long:  `Apply every embedded migration that has not run yet. Safe to repeat.`,
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := sqlstore.Connect(cmd.Context(), cfg.Database.Driver, cfg.GetDatabaseDSN(), true)
	if err != nil {
		return err
	}
	defer db.Close()
	fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
	return nil
}
