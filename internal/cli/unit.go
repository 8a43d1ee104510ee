package cli

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"construction-sales-ledger/internal/domain"
)

func init() {
	rootCmd.AddCommand(unitCmd)
	unitCmd.AddCommand(unitCreateCmd)
	unitCreateCmd.Flags().String("project", "", "Project id")
	unitCreateCmd.Flags().Int64("price", 0, "List price in minor units")
	unitCreateCmd.Flags().String("construction-status", "planned", "Construction status label")
	_ = unitCreateCmd.MarkFlagRequired("project")
	_ = unitCreateCmd.MarkFlagRequired("price")
}

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Manage sellable units",
}

var unitCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register an available unit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		price, _ := cmd.Flags().GetInt64("price")
		construction, _ := cmd.Flags().GetString("construction-status")
		if price <= 0 {
			return domain.ErrInvalidAmount
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		now := time.Now().UTC()
		unit := &domain.Unit{
			ID:                 uuid.NewString(),
			ProjectID:          project,
			ConstructionStatus: construction,
			SalesStatus:        domain.UnitSalesStatusAvailable,
			ListPrice:          price,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := e.store.Units().Create(cmd.Context(), unit); err != nil {
			return err
		}
		return printJSON(cmd, unit)
	},
}
