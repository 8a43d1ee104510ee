package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"construction-sales-ledger/internal/config"
	"construction-sales-ledger/internal/security"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenIssueCmd.Flags().StringSliceP("role", "r", nil, "Role to grant (repeatable)")
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API access tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue USER_ID",
	Short: "Issue an access token signed with the configured secret",
	Long:  `Issue an access token for development and for system callers such as the task workflow.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		roles, _ := cmd.Flags().GetStringSlice("role")
		for _, r := range roles {
			if !config.IsKnownRole(r) {
				return fmt.Errorf("unknown role %q", r)
			}
		}
		tm := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
		token, err := tm.GenerateAccessToken(args[0], roles)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
