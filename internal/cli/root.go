// Package cli implements ledgerctl, the operator command line for the sales
// ledger. Every command loads the same configuration as the server.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"construction-sales-ledger/internal/audit"
	"construction-sales-ledger/internal/config"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/repository/sqlstore"
)

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Operate the construction sales ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.InitializeWriter(os.Stderr, level, "text")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "config/config.dev.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// env is what a command needs to talk to the ledger.
type env struct {
	cfg      *config.Config
	db       *sql.DB
	store    *sqlstore.Store
	recorder *audit.Recorder
}

// openEnv loads configuration and connects. The schema is applied only when
// the configuration asks for it; `ledgerctl migrate` does it explicitly.
func openEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := sqlstore.Connect(cmd.Context(), cfg.Database.Driver, cfg.GetDatabaseDSN(), cfg.Database.Migrate)
	if err != nil {
		return nil, err
	}
	rec := audit.NewRecorder(sqlstore.NewAuditRepository(db), 1, cfg.Audit.QueueSize, cfg.Audit.WriteTimeout)
	rec.Start()
	return &env{cfg: cfg, db: db, store: sqlstore.NewStore(db), recorder: rec}, nil
}

// Close drains pending audit entries before closing the database.
func (e *env) Close(ctx context.Context) {
	if err := e.recorder.Stop(ctx); err != nil {
		logger.Warn("Audit recorder did not drain", "error", err)
	}
	_ = e.db.Close()
}
