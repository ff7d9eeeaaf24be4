package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/Mohsinsiddi/tokenapp/internal/units"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Prompter asks yes/no questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

var stdPrompter = NewPrompter(os.Stdin, os.Stdout)

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool { return stdPrompter.Confirm(prompt) }

// ConfirmDanger is like Confirm but styled for irreversible actions.
func ConfirmDanger(prompt string) bool { return stdPrompter.ConfirmDanger(prompt) }

func (p *Prompter) Confirm(prompt string) bool {
	return p.ask(StyleWarning.Render(prompt))
}

func (p *Prompter) ConfirmDanger(prompt string) bool {
	return p.ask(StyleError.Render("⚠ " + prompt))
}

func (p *Prompter) ask(styled string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", styled)
	line, _ := p.in.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// SigningPrompt is the terminal signing prompt for the keystore wallet. It
// shows what is about to be signed and waits for the user's answer. Without
// a terminal nothing can be approved.
type SigningPrompt struct {
	prompter *Prompter
	abi      abi.ABI
	decimals uint8
	symbol   string
}

// NewSigningPrompt decodes calldata with parsed so the user sees the
// transfer's recipient and amount rather than raw hex.
func NewSigningPrompt(p *Prompter, parsed abi.ABI, decimals uint8, symbol string) *SigningPrompt {
	return &SigningPrompt{prompter: p, abi: parsed, decimals: decimals, symbol: symbol}
}

func (s *SigningPrompt) Approve(_ context.Context, tx provider.PendingTx) (bool, error) {
	fmt.Fprintln(s.prompter.out, KeyValueBlock("Signature request", DescribeTx(tx, s.abi, s.decimals, s.symbol)))
	return s.prompter.ConfirmDanger("Sign and broadcast this transaction?"), nil
}

var _ provider.Approver = (*SigningPrompt)(nil)

// DescribeTx lists the fields of a pending transaction for display. Calls to
// methods known to parsed are decoded.
func DescribeTx(tx provider.PendingTx, parsed abi.ABI, decimals uint8, symbol string) [][2]string {
	pairs := [][2]string{
		{"From", tx.From.Hex()},
		{"Contract", tx.To.Hex()},
	}

	if len(tx.Data) >= 4 {
		if method, err := parsed.MethodById(tx.Data[:4]); err == nil {
			pairs = append(pairs, [2]string{"Method", method.Sig})
			if args, err := method.Inputs.Unpack(tx.Data[4:]); err == nil && method.Name == "transfer" && len(args) == 2 {
				to, _ := args[0].(common.Address)
				amount, _ := args[1].(*big.Int)
				pairs = append(pairs,
					[2]string{"Recipient", to.Hex()},
					[2]string{"Amount", strings.TrimSpace(units.FromSmallest(amount, decimals) + " " + symbol)})
			}
		}
	}

	if tx.ChainID != nil {
		pairs = append(pairs, [2]string{"Chain ID", tx.ChainID.String()})
	}
	pairs = append(pairs, [2]string{"Nonce", fmt.Sprint(tx.Nonce)})
	pairs = append(pairs, [2]string{"Gas limit", fmt.Sprint(tx.Gas)})
	if tx.GasFeeCap != nil {
		pairs = append(pairs, [2]string{"Max fee", units.FromSmallest(tx.MaxFee(), 18) + " ETH"})
	}
	return pairs
}
