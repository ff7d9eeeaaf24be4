package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/Mohsinsiddi/tokenapp/internal/ui"
	"github.com/spf13/cobra"
)

var (
	transferTo     string
	transferAmount string
	transferWait   bool
	transferYes    bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Send tokens from the connected account",
	Long: `Send tokens from the wallet's active account. The wallet signs the
transaction; with the keystore provider you are shown what will be signed
first (skip with --yes).

By default the command returns once the network accepts the transaction.
--wait (or wait_for_receipt in the config) waits until it is mined.

Examples:
  tokenapp transfer --to 0xRecipient --amount 2.5
  tokenapp transfer --to 0xRecipient --amount 0.1 --wait`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if transferTo == "" {
			return fmt.Errorf("--to is required")
		}
		if transferAmount == "" {
			return fmt.Errorf("--amount is required")
		}
		wait := transferWait || cfg.WaitForReceipt
		out := cmd.OutOrStdout()

		var approver provider.Approver
		if !transferYes {
			approver = pendingApprover(cmd)
		}
		ctrl, _, err := newController(approver, wait)
		if err != nil {
			return err
		}
		defer ctrl.Disconnect()

		ctx := cmd.Context()
		if err := ctrl.Connect(ctx); err != nil {
			return userError(err)
		}
		account := ctrl.Snapshot().Account

		fmt.Fprintln(out, ui.KeyValueBlock("Transfer", [][2]string{
			{"From", ui.Addr(account.Hex())},
			{"To", ui.Addr(transferTo)},
			{"Amount", ui.Amount(transferAmount, cfg.TokenSymbol)},
			{"Contract", ui.Addr(cfg.ContractAddress)},
		}))

		// The keystore prompt writes to the terminal; a spinner would garble it.
		var spin *ui.Spinner
		if cfg.Provider != config.ProviderKeystore || transferYes {
			spin = ui.NewSpinner("Waiting for the wallet to sign...")
			spin.Start()
		}
		outcome, err := ctrl.Transfer(ctx, transferTo, transferAmount)
		if spin != nil {
			spin.Stop()
		}
		if err != nil {
			return userError(err)
		}

		fmt.Fprintln(out, ui.Success(outcome.Message))
		if r := outcome.Result.Receipt; r != nil {
			fmt.Fprintln(out, ui.Meta(fmt.Sprintf("Block %s, gas used %d", r.BlockNumber, r.GasUsed)))
		}
		if outcome.Refreshed {
			if b := ctrl.Snapshot().Balance; b != nil {
				fmt.Fprintln(out, ui.Meta("New balance: ")+ui.Amount(b.Display(), b.Symbol))
			}
		}
		return nil
	},
}

// pendingApprover is the terminal signing prompt on the command's streams.
// It decodes calldata with the configured ABI.
func pendingApprover(cmd *cobra.Command) provider.Approver {
	prompter := ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	return provider.ApproverFunc(func(ctx context.Context, tx provider.PendingTx) (bool, error) {
		_, parsed, err := newClientFactory()
		if err != nil {
			return false, err
		}
		return ui.NewSigningPrompt(prompter, parsed, cfg.TokenDecimals, cfg.TokenSymbol).Approve(ctx, tx)
	})
}

func init() {
	transferCmd.Flags().StringVar(&transferTo, "to", "", "recipient address (required)")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "amount in token units, e.g. 2.5 (required)")
	transferCmd.Flags().BoolVar(&transferWait, "wait", false, "wait until the transfer is mined")
	transferCmd.Flags().BoolVarP(&transferYes, "yes", "y", false, "sign without the keystore prompt")
}
