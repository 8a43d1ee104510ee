package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"construction-sales-ledger/internal/service"
)

// errDrift makes ledgerctl exit non-zero when a wallet does not match its stream.
var errDrift = errors.New("wallet balances do not match the transaction stream")

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletVerifyCmd)
	walletCmd.AddCommand(walletShowCmd)
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Inspect commission wallets",
}

var walletVerifyCmd = &cobra.Command{
	Use:   "verify OWNER_ID",
	Short: "Replay the transaction stream and compare it with stored balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		svc := service.NewWalletService(e.store, e.recorder, nil, service.PromotionPolicy(e.cfg.Wallet.PromotionPolicy))
		result, err := svc.Verify(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := printJSON(cmd, result); err != nil {
			return err
		}
		if !result.Consistent || !result.Balanced {
			return errDrift
		}
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show OWNER_ID",
	Short: "Print the balances of one wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close(cmd.Context())

		svc := service.NewWalletService(e.store, e.recorder, nil, service.PromotionPolicy(e.cfg.Wallet.PromotionPolicy))
		w, err := svc.GetWallet(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, w)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
