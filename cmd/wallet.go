package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Mohsinsiddi/tokenapp/internal/ui"
	"github.com/Mohsinsiddi/tokenapp/internal/wallet"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var walletRemoveYes bool

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage keystore wallets",
	Long: `Manage the wallets used by the keystore provider. Signing keys live in the
OS keychain (or an encrypted file when no keychain is available); only names
and addresses are written to wallets.json.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Add a watch-only wallet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, address := args[0], args[1]
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		if err := mgr.AddWatchOnly(name, address); err != nil {
			return err
		}
		w, _ := mgr.Get(name)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
		fmt.Fprintln(out, ui.Hint("Watch-only wallets can be read but not sign transfers."))
		return nil
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a private key as a signing wallet",
	Long: `Import a hex private key. The key is read without echo from the terminal,
or from stdin when piped, and stored in the OS keychain.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		hexKey, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Private key: ")
		if err != nil {
			return err
		}
		if hexKey == "" {
			return fmt.Errorf("%w: empty input", wallet.ErrInvalidKey)
		}

		mgr, err := newWalletManager(true)
		if err != nil {
			return err
		}
		if err := mgr.AddWithKey(name, hexKey); err != nil {
			return err
		}
		w, _ := mgr.Get(name)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q imported: %s", name, ui.Addr(w.Address))))
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Make it the sending account with: tokenapp wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		wallets := mgr.List()
		out := cmd.OutOrStdout()

		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Import one with: tokenapp wallet import <name>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address), ui.Meta(w.Type), def})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()

		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		w, err := mgr.Get(name)
		if err != nil {
			return fmt.Errorf("wallet %q: %w", name, err)
		}

		if !walletRemoveYes {
			p := ui.NewPrompter(cmd.InOrStdin(), out)
			if !p.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
				fmt.Fprintln(out, ui.Meta("Cancelled."))
				return nil
			}
		}

		if w.CanSign() {
			if mgr, err = newWalletManager(true); err != nil {
				return err
			}
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Long:  "Set the wallet the keystore provider signs with. Without a name, pick from a list.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			name, err = ui.PickWallet(mgr.List())
			if errors.Is(err, wallet.ErrWalletNotFound) {
				fmt.Fprintln(out, ui.Info("No wallets configured yet."))
				return nil
			}
			if err != nil {
				return err
			}
			if name == "" {
				fmt.Fprintln(out, ui.Meta("Cancelled."))
				return nil
			}
		}

		if err := mgr.SetDefault(name); err != nil {
			return fmt.Errorf("wallet %q: %w", name, err)
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

func init() {
	walletRemoveCmd.Flags().BoolVarP(&walletRemoveYes, "yes", "y", false, "skip the confirmation prompt")
	walletCmd.AddCommand(walletAddCmd, walletImportCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}

// readSecret reads one line without echo when in is a terminal, otherwise
// reads it as-is.
func readSecret(in io.Reader, prompt io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
