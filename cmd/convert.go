package cmd

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokenapp/internal/ui"
	"github.com/Mohsinsiddi/tokenapp/internal/units"
	"github.com/spf13/cobra"
)

var (
	convertRaw      bool
	convertDecimals int
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount>",
	Short: "Convert between token units and smallest units",
	Long: `Convert a display amount into the integer the contract sees, or back
with --raw. Uses token_decimals from the config unless --decimals is given.

Examples:
  tokenapp convert 2.5                  # → 2500000000000000000
  tokenapp convert --raw 1500000        # → 0.0000000000015
  tokenapp convert --decimals 6 1.25    # → 1250000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decimals := cfg.TokenDecimals
		if cmd.Flags().Changed("decimals") {
			if convertDecimals < 0 || convertDecimals > 77 {
				return fmt.Errorf("--decimals must be between 0 and 77")
			}
			decimals = uint8(convertDecimals)
		}

		pairs, err := convertAmount(args[0], decimals, convertRaw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Unit Conversion", pairs))
		return nil
	},
}

// convertAmount returns the rows of the conversion table.
func convertAmount(amount string, decimals uint8, fromRaw bool) ([][2]string, error) {
	var raw *big.Int
	if fromRaw {
		var ok bool
		raw, ok = new(big.Int).SetString(amount, 10)
		if !ok || raw.Sign() < 0 {
			return nil, fmt.Errorf("%w: %q", units.ErrNotNumeric, amount)
		}
	} else {
		var err error
		if raw, err = units.ToSmallest(amount, decimals); err != nil {
			return nil, err
		}
	}

	return [][2]string{
		{"Decimals", ui.Val(fmt.Sprint(decimals))},
		{"Amount", ui.Amount(units.FromSmallest(raw, decimals), cfg.TokenSymbol)},
		{"Smallest", ui.Val(raw.String())},
		{"Hex", ui.Val("0x" + raw.Text(16))},
	}, nil
}

func init() {
	convertCmd.Flags().BoolVar(&convertRaw, "raw", false, "input is in smallest units")
	convertCmd.Flags().IntVar(&convertDecimals, "decimals", 18, "token decimals (default: config)")
}
