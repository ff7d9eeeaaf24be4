package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/rpc"
	"github.com/Mohsinsiddi/tokenapp/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		settings := cfg.Settings()

		t := ui.NewTable([]ui.Column{
			{Title: "Key", Width: 24},
			{Title: "Value", Width: 50},
		})
		for _, k := range config.Keys() {
			t.AddRow(ui.Row{ui.Meta(k), ui.Val(fmt.Sprint(settings[k]))})
		}
		fmt.Fprintln(out, ui.StyleTitle.Render("Current Configuration"))
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta("Config file: "+cfg.Path()))

		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(out, ui.Warn(err.Error()))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set one configuration value and save it. Keys:

  contract_address, abi, abi_path, token_decimals, token_symbol,
  provider (injected | keystore | none), wallet_endpoint,
  rpc_urls (comma separated), rpc_algorithm (fastest | round-robin | failover),
  default_wallet, wait_for_receipt, refresh_after_transfer,
  account_poll_interval (seconds), log.level, log.mode, log.encoding`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s set to %v", key, cfg.Settings()[key])))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Dir())
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured RPC nodes answer and are in sync",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(cfg.RPCURLs) == 0 {
			fmt.Fprintln(out, ui.Warn("No rpc_urls configured."))
			fmt.Fprintln(out, ui.Hint("tokenapp config set rpc_urls <url>[,<url>...]"))
			return nil
		}

		results := rpc.HealthCheck(cmd.Context(), cfg.RPCURLs)

		t := ui.NewTable([]ui.Column{
			{Title: "Node", Width: 44},
			{Title: "Status", Width: 10},
			{Title: "Block", Width: 12},
			{Title: "Latency", Width: 10},
		})
		var (
			healthy  int
			failures []string
		)
		for _, h := range results {
			status, block, latency := ui.Success("ok"), "-", "-"
			switch {
			case h.Err != nil:
				status = ui.Err("down")
				failures = append(failures, h.URL+": "+h.Err.Error())
			case h.Stale:
				status = ui.Warn("stale")
			}
			if h.Err == nil {
				block = fmt.Sprint(h.BlockNumber)
				latency = h.Latency.Round(time.Millisecond).String()
			}
			if h.Healthy {
				healthy++
			}
			t.AddRow(ui.Row{ui.Val(h.URL), status, ui.Val(block), ui.Meta(latency)})
		}

		fmt.Fprintln(out, ui.StyleTitle.Render("RPC Nodes"))
		fmt.Fprintln(out, t.Render())
		if len(failures) > 0 {
			fmt.Fprintln(out, ui.Meta("Errors:"))
			fmt.Fprintln(out, ui.Indent(strings.Join(failures, "\n"), 2))
		}
		if healthy == 0 {
			return rpc.ErrNoHealthyRPC
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%d of %d nodes healthy", healthy, len(results))))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configCheckCmd, configPathCmd)
}
