package cmd

import (
	"fmt"
	"time"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/Mohsinsiddi/tokenapp/internal/ui"
	"github.com/spf13/cobra"
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Open the interactive token view",
	Long: `Open the interactive view: the connected account and its balance, a
recipient field, an amount field and a send action.

Logs go to the logs directory under the config dir while the view is open.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		approver := ui.NewTUIApprover()
		ctrl, parsed, err := newController(approver, cfg.WaitForReceipt)
		if err != nil {
			return err
		}
		defer ctrl.Disconnect()

		appCfg := ui.AppConfig{
			Controller:   ctrl,
			Version:      Version,
			PollInterval: time.Duration(cfg.AccountPollInterval) * time.Second,
			Describe: func(tx provider.PendingTx) [][2]string {
				return ui.DescribeTx(tx, parsed, cfg.TokenDecimals, cfg.TokenSymbol)
			},
		}
		if cfg.Provider == config.ProviderKeystore {
			appCfg.Approvals = approver.Requests()
		}

		if err := ui.RunApp(cmd.Context(), appCfg); err != nil {
			return err
		}
		if tx := ctrl.Snapshot().LastTx; tx != nil {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Last transfer: ")+ui.Addr(tx.TxHash.Hex()))
		}
		return nil
	},
}
