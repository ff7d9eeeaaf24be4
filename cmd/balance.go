package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/tokenapp/internal/token"
	"github.com/Mohsinsiddi/tokenapp/internal/ui"
	"github.com/spf13/cobra"
)

var balanceRaw bool

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show the token balance of an address or the connected account",
	Long: `Show the token balance held by address. Without an address the wallet's
first account is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			bal token.Balance
			err error
		)
		spin := ui.NewSpinner("Reading balance...")
		spin.Start()
		if len(args) == 1 {
			bal, err = balanceOf(cmd.Context(), args[0])
		} else {
			bal, err = connectedBalance(cmd.Context())
		}
		spin.Stop()
		if err != nil {
			return userError(err)
		}

		printBalance(cmd, bal)
		return nil
	},
}

// balanceOf reads any address's balance. No account access is requested.
func balanceOf(ctx context.Context, address string) (token.Balance, error) {
	if err := cfg.Validate(); err != nil {
		return token.Balance{}, err
	}
	open, err := newOpener(nil)
	if err != nil {
		return token.Balance{}, err
	}
	factory, _, err := newClientFactory()
	if err != nil {
		return token.Balance{}, err
	}
	p, err := open(ctx)
	if err != nil {
		return token.Balance{}, fmt.Errorf("%w: %w", token.ErrProviderUnavailable, err)
	}
	defer p.Close()
	return factory(p).GetBalance(ctx, address)
}

// connectedBalance connects like the app does and reads the active
// account's balance.
func connectedBalance(ctx context.Context) (token.Balance, error) {
	ctrl, _, err := newController(nil, false)
	if err != nil {
		return token.Balance{}, err
	}
	defer ctrl.Disconnect()

	if err := ctrl.Connect(ctx); err != nil {
		return token.Balance{}, err
	}
	if err := ctrl.LoadBalance(ctx); err != nil {
		return token.Balance{}, err
	}
	return *ctrl.Snapshot().Balance, nil
}

func printBalance(cmd *cobra.Command, bal token.Balance) {
	pairs := [][2]string{
		{"Account", ui.Addr(bal.Account.Hex())},
		{"Balance", ui.Amount(bal.Display(), bal.Symbol)},
		{"Contract", ui.Addr(cfg.ContractAddress)},
	}
	if balanceRaw {
		pairs = append(pairs, [2]string{"Raw", ui.Val(bal.Raw.String())})
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Token Balance", pairs))
}

func init() {
	balanceCmd.Flags().BoolVar(&balanceRaw, "raw", false, "also print the balance in smallest units")
}
