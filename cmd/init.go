package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Choose how tokenapp reaches your wallet and which token it manages.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Banner(Version))

		result, err := ui.RunWizard(cfg)
		if err != nil {
			return err
		}
		if result.Canceled {
			fmt.Fprintln(out, ui.Meta("Cancelled. Nothing was saved."))
			return nil
		}

		if err := result.Apply(cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Fprintln(out, ui.Success("Saved "+cfg.Path()))
		if cfg.Provider == config.ProviderKeystore {
			fmt.Fprintln(out, ui.Hint("Import a signing key with: tokenapp wallet import <name>"))
		}
		fmt.Fprintln(out, ui.Hint("Open the token view with: tokenapp app"))
		return nil
	},
}
