package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/ui"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/tokenapp/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "tokenapp",
	Short: "Check and send an ERC-20 token through your wallet",
	Long: `tokenapp reads your balance of one ERC-20 token and sends transfers,
signed by your wallet.

Run 'tokenapp app' for the interactive view, or use the balance and
transfer commands directly. Configure the token and wallet with
'tokenapp init'.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return setupLogging(cmd == appCmd)
	},
}

// Execute runs the root command. Ctrl+C cancels whatever is in flight.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logx.Close() //nolint:errcheck
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		os.Exit(1)
	}
}

// setupLogging configures logx from the config. The interactive app owns
// the terminal, so it always logs to files. Console logging stays quiet
// unless --verbose is set.
func setupLogging(tui bool) error {
	lc := cfg.Log
	if tui {
		lc.Mode = "file"
	}
	conf := lc.ToLogConf(cfg.Dir())
	switch {
	case verbose:
		conf.Level = "debug"
	case conf.Mode == "console":
		conf.Level = "error"
	}
	if err := logx.SetUp(conf); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	return nil
}

func init() {
	// TOKENAPP_CONFIG_DIR env var seeds the --config flag.
	if envDir := os.Getenv("TOKENAPP_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.tokenapp)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		initCmd,
		appCmd,
		balanceCmd,
		transferCmd,
		walletCmd,
		configCmd,
		convertCmd,
	)
}
