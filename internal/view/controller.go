// Package view holds the single-screen session: the connected account, its
// balance, and the transfer form's lifecycle. It is UI-agnostic; the TUI
// and the CLI commands both drive it.
package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/Mohsinsiddi/tokenapp/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/zeromicro/go-zero/core/logx"
)

// ErrTransferInFlight is returned when a transfer is submitted while
// another one is still waiting on the wallet.
var ErrTransferInFlight = errors.New("a transfer is already in progress")

var errSessionChanged = errors.New("session changed")

// Opener opens a provider for a new session.
type Opener func(ctx context.Context) (provider.Provider, error)

// ClientFactory binds the token contract through a session's provider.
type ClientFactory func(p provider.Provider) *token.Client

// Options tune the controller.
type Options struct {
	// WaitForReceipt makes a transfer succeed only once mined with status 1.
	WaitForReceipt bool
	// RefreshAfterTransfer re-reads the balance after a successful transfer.
	RefreshAfterTransfer bool
	// ConfirmTimeout bounds the receipt wait. Zero means the caller's context.
	ConfirmTimeout time.Duration
}

// Controller is the view's state machine. All methods are safe for
// concurrent use; network calls run outside the lock.
type Controller struct {
	open      Opener
	newClient ClientFactory
	opts      Options

	mu       sync.Mutex
	gen      uint64 // bumped whenever the session is torn down
	provider provider.Provider
	client   *token.Client
	state    State
	account  common.Address
	balance  *token.Balance
	lastTx   *token.TransferResult
	message  string
	err      error
}

// New creates a disconnected controller.
func New(open Opener, newClient ClientFactory, opts Options) *Controller {
	return &Controller{open: open, newClient: newClient, opts: opts}
}

// Snapshot returns a copy of the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:   c.state,
		Account: c.account,
		LastTx:  c.lastTx,
		Message: c.message,
		Err:     c.err,
	}
	if c.balance != nil {
		b := *c.balance
		s.Balance = &b
	}
	return s
}

// Connect opens a provider, asks for account access and makes the first
// exposed account active. With no account the view stays disconnected and
// ErrNoAccount is returned. Connecting an already connected view is a no-op.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return nil
	}
	gen := c.gen
	c.mu.Unlock()

	p, account, err := c.openSession(ctx)
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.setError(err)
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.state != Disconnected {
		p.Close()
		return nil
	}
	c.attach(p, account)
	return nil
}

// openSession opens a provider and resolves its first account.
func (c *Controller) openSession(ctx context.Context) (provider.Provider, common.Address, error) {
	if c.open == nil {
		return nil, common.Address{}, token.ErrProviderUnavailable
	}
	p, err := c.open(ctx)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("%w: %w", token.ErrProviderUnavailable, err)
	}
	if p == nil {
		return nil, common.Address{}, token.ErrProviderUnavailable
	}

	if _, err := p.RequestAccounts(ctx); err != nil {
		p.Close()
		return nil, common.Address{}, accountError(err)
	}
	accounts, err := p.Accounts(ctx)
	if err != nil {
		p.Close()
		return nil, common.Address{}, accountError(err)
	}
	if len(accounts) == 0 {
		p.Close()
		return nil, common.Address{}, token.ErrNoAccount
	}
	return p, accounts[0], nil
}

// attach installs a new session. Callers hold c.mu.
func (c *Controller) attach(p provider.Provider, account common.Address) {
	c.gen++
	c.provider = p
	c.client = c.newClient(p)
	c.account = account
	c.balance = nil
	c.lastTx = nil
	c.state = Connected
	c.err = nil
	c.message = "Connected as " + account.Hex()
	logx.Infow("session connected", logx.Field("account", account.Hex()))
}

// LoadBalance reads the active account's balance. On failure the previous
// balance stays displayed and the reason is recorded.
func (c *Controller) LoadBalance(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Disconnected {
		c.mu.Unlock()
		return token.ErrNoAccount
	}
	gen, client, account := c.gen, c.client, c.account
	c.mu.Unlock()

	bal, err := client.GetBalance(ctx, account.Hex())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil
	}
	if err != nil {
		c.setError(err)
		return err
	}
	c.balance = &bal
	c.err = nil
	c.message = ""
	if c.state == Connected {
		c.state = BalanceLoaded
	}
	return nil
}

// Transfer submits a transfer from the active account. It blocks until the
// wallet accepts or rejects (and, with WaitForReceipt, until mined).
func (c *Controller) Transfer(ctx context.Context, to, amount string) (Outcome, error) {
	c.mu.Lock()
	switch c.state {
	case Disconnected:
		c.mu.Unlock()
		return Outcome{Err: token.ErrNoAccount, Message: token.Reason(token.ErrNoAccount)}, token.ErrNoAccount
	case TransferInFlight:
		c.mu.Unlock()
		return Outcome{Err: ErrTransferInFlight, Message: "Wait for the current transfer to finish."}, ErrTransferInFlight
	}

	if err := validateInputs(to, amount); err != nil {
		out := c.finishLocked(nil, err)
		c.mu.Unlock()
		return out, err
	}

	gen, client, account := c.gen, c.client, c.account
	c.state = TransferInFlight
	c.message = "Waiting for the wallet to sign…"
	c.err = nil
	c.mu.Unlock()

	res, err := client.TransferTokens(ctx, account.Hex(), to, amount)
	if err == nil && c.opts.WaitForReceipt {
		res.Receipt, err = c.waitMined(ctx, client, res)
	}

	c.mu.Lock()
	if c.gen != gen {
		// Session changed underneath; report but do not touch the new one.
		c.mu.Unlock()
		return outcome(res, err), err
	}
	out := c.finishLocked(res, err)
	c.mu.Unlock()

	if err == nil && c.opts.RefreshAfterTransfer {
		out.Refreshed = c.refresh(ctx, gen, client, account) == nil
	}
	return out, err
}

func (c *Controller) waitMined(ctx context.Context, client *token.Client, res *token.TransferResult) (*types.Receipt, error) {
	if c.opts.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ConfirmTimeout)
		defer cancel()
	}
	return client.WaitConfirmed(ctx, res.TxHash)
}

// finishLocked records the end of a transfer. Callers hold c.mu.
func (c *Controller) finishLocked(res *token.TransferResult, err error) Outcome {
	out := outcome(res, err)
	if err != nil {
		c.state = TransferFailed
		c.err = err
		c.message = out.Message
		logx.Errorw("transfer failed", logx.Field("account", c.account.Hex()), logx.Field("error", err.Error()))
		return out
	}
	c.state = TransferSucceeded
	c.lastTx = res
	c.err = nil
	c.message = out.Message
	return out
}

func outcome(res *token.TransferResult, err error) Outcome {
	if err != nil {
		return Outcome{Result: res, Err: err, Message: token.Reason(err)}
	}
	msg := fmt.Sprintf("Transfer successful! Sent %s to %s (tx %s)", res.Request.Amount, res.Request.To.Hex(), res.TxHash.Hex())
	if res.Receipt != nil {
		msg += fmt.Sprintf(", mined in block %s", res.Receipt.BlockNumber)
	}
	return Outcome{Result: res, Message: msg}
}

// refresh re-reads the balance of the session identified by gen without
// leaving the current state. client and account belong to that session.
func (c *Controller) refresh(ctx context.Context, gen uint64, client *token.Client, account common.Address) error {
	c.mu.Lock()
	stale := c.gen != gen
	c.mu.Unlock()
	if stale {
		return errSessionChanged
	}

	bal, err := client.GetBalance(ctx, account.Hex())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return errSessionChanged
	}
	if err != nil {
		logx.Infof("balance refresh after transfer failed: %v", err)
		return err
	}
	c.balance = &bal
	return nil
}

// Acknowledge dismisses a transfer result and returns to Connected. The
// balance stays.
func (c *Controller) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == TransferSucceeded || c.state == TransferFailed {
		c.state = Connected
		c.message = ""
		c.err = nil
	}
}

// SyncAccount re-lists the wallet's accounts. When the first account has
// changed the session is torn down and rebuilt for it and its balance is
// loaded; when no account remains the view disconnects. It reports whether
// the active account changed.
func (c *Controller) SyncAccount(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.state == Disconnected || c.state == TransferInFlight {
		c.mu.Unlock()
		return false, nil
	}
	gen, p, current := c.gen, c.provider, c.account
	c.mu.Unlock()

	accounts, err := p.Accounts(ctx)
	if err != nil {
		err = accountError(err)
		if errors.Is(err, token.ErrProviderUnavailable) {
			c.teardown(gen, err)
		}
		return false, err
	}
	if len(accounts) == 0 {
		c.teardown(gen, token.ErrNoAccount)
		return true, token.ErrNoAccount
	}
	if accounts[0] == current {
		return false, nil
	}

	logx.Infow("account changed",
		logx.Field("from", current.Hex()),
		logx.Field("to", accounts[0].Hex()))
	c.teardown(gen, nil)

	if err := c.Connect(ctx); err != nil {
		return true, err
	}
	return true, c.LoadBalance(ctx)
}

// Disconnect closes the provider and clears the session.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	c.teardown(gen, nil)
}

// teardown ends session gen, recording cause as the reason when set.
func (c *Controller) teardown(gen uint64, cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	if c.provider != nil {
		c.provider.Close()
	}
	c.gen++
	c.provider = nil
	c.client = nil
	c.account = common.Address{}
	c.balance = nil
	c.lastTx = nil
	c.state = Disconnected
	c.err = cause
	c.message = token.Reason(cause)
	logx.Info("session disconnected")
}

// setError records err without changing state. Callers hold c.mu.
func (c *Controller) setError(err error) {
	c.err = err
	c.message = token.Reason(err)
	logx.Errorw("view error", logx.Field("state", c.state.String()), logx.Field("error", err.Error()))
}

func validateInputs(to, amount string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("%w: recipient is empty", token.ErrInvalidAddress)
	}
	if strings.TrimSpace(amount) == "" {
		return fmt.Errorf("%w: amount is empty", token.ErrInvalidAmount)
	}
	return nil
}

func accountError(err error) error {
	switch {
	case errors.Is(err, provider.ErrRejected):
		return fmt.Errorf("%w: %w", token.ErrUserRejected, err)
	default:
		return fmt.Errorf("%w: %w", token.ErrProviderUnavailable, err)
	}
}
