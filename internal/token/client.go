// Package token reads balances from and sends transfers to one ERC-20
// contract through a wallet provider.
package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/contract"
	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/Mohsinsiddi/tokenapp/internal/units"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

// Balance is a raw on-chain balance plus what is needed to display it.
type Balance struct {
	Account  common.Address
	Raw      *big.Int
	Decimals uint8
	Symbol   string
}

// Display returns the balance in display units with trailing zeros trimmed.
func (b Balance) Display() string {
	return units.FromSmallest(b.Raw, b.Decimals)
}

func (b Balance) String() string {
	if b.Symbol == "" {
		return b.Display()
	}
	return b.Display() + " " + b.Symbol
}

// TransferRequest is one submission. ID correlates log lines.
type TransferRequest struct {
	ID     string
	From   common.Address
	To     common.Address
	Amount string // display units, as entered
}

// TransferResult is what a broadcast transfer produced. Receipt is set only
// after WaitConfirmed.
type TransferResult struct {
	Request       TransferRequest
	SmallestUnits *big.Int
	TxHash        common.Hash
	Receipt       *types.Receipt
}

// Client talks to one token contract.
type Client struct {
	provider     provider.Provider
	binding      *contract.Binding
	decimals     uint8
	symbol       string
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithDecimals sets the token's decimals. Default 18.
func WithDecimals(d uint8) Option {
	return func(c *Client) { c.decimals = d }
}

// WithSymbol sets the symbol shown next to balances.
func WithSymbol(s string) Option {
	return func(c *Client) { c.symbol = s }
}

// WithPollInterval sets how often WaitConfirmed asks for a receipt.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// New binds the contract at address through p. A nil p is allowed: every
// operation then fails with ErrProviderUnavailable.
func New(p provider.Provider, parsed abi.ABI, address common.Address, opts ...Option) *Client {
	c := &Client{
		provider:     p,
		decimals:     18,
		pollInterval: config.ReceiptPollInterval,
	}
	if p != nil {
		c.binding = contract.Bind(p, parsed, address)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decimals returns the configured token decimals.
func (c *Client) Decimals() uint8 { return c.decimals }

// Symbol returns the configured token symbol.
func (c *Client) Symbol() string { return c.symbol }

// GetBalance returns the token balance of address in smallest units.
func (c *Client) GetBalance(ctx context.Context, address string) (Balance, error) {
	if c.provider == nil {
		return Balance{}, ErrProviderUnavailable
	}
	if !common.IsHexAddress(address) {
		return Balance{}, fmt.Errorf("%w: %w %q", ErrContractCall, ErrInvalidAddress, address)
	}
	account := common.HexToAddress(address)

	out, err := c.binding.Call(ctx, contract.MethodBalanceOf, account)
	if err != nil {
		logx.WithContext(ctx).Errorw("balanceOf failed",
			logx.Field("account", account.Hex()),
			logx.Field("contract", c.binding.Address().Hex()),
			logx.Field("error", err.Error()))
		return Balance{}, fmt.Errorf("%w: %w", ErrContractCall, err)
	}
	raw, ok := out[0].(*big.Int)
	if !ok || raw.Sign() < 0 {
		return Balance{}, fmt.Errorf("%w: unexpected balanceOf result %v", ErrContractCall, out[0])
	}

	return Balance{Account: account, Raw: raw, Decimals: c.decimals, Symbol: c.symbol}, nil
}

// TransferTokens sends amount (display units) from from to to. It returns
// once the wallet has accepted the transaction; it does not wait for mining.
func (c *Client) TransferTokens(ctx context.Context, from, to, amount string) (*TransferResult, error) {
	if c.provider == nil {
		return nil, ErrProviderUnavailable
	}
	sender, err := parseAccount(from)
	if err != nil {
		return nil, err
	}
	to = strings.TrimSpace(to)
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("%w: recipient %q", ErrInvalidAddress, to)
	}
	recipient := common.HexToAddress(to)

	value, err := units.ToSmallest(amount, c.decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	req := TransferRequest{
		ID:     uuid.NewString(),
		From:   sender,
		To:     recipient,
		Amount: strings.TrimSpace(amount),
	}
	log := logx.WithContext(ctx).WithFields(
		logx.Field("transfer_id", req.ID),
		logx.Field("from", sender.Hex()),
		logx.Field("to", recipient.Hex()),
		logx.Field("amount", req.Amount))
	log.Infow("submitting transfer", logx.Field("smallest_units", value.String()))

	hash, err := c.binding.Transact(ctx, sender, contract.MethodTransfer, recipient, value)
	if err != nil {
		err = classifySend(err)
		log.Errorw("transfer failed", logx.Field("error", err.Error()))
		return nil, err
	}

	log.Infow("transfer accepted", logx.Field("hash", hash.Hex()))
	return &TransferResult{Request: req, SmallestUnits: value, TxHash: hash}, nil
}

// WaitConfirmed polls for the receipt of hash until it is mined or ctx ends.
// A reverted transaction returns its receipt together with ErrTransaction.
func (c *Client) WaitConfirmed(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if c.provider == nil {
		return nil, ErrProviderUnavailable
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.provider.TransactionReceipt(ctx, hash)
		switch {
		case err != nil:
			logx.WithContext(ctx).Infof("receipt lookup for %s failed, retrying: %v", hash.Hex(), err)
		case receipt != nil && receipt.Status == types.ReceiptStatusFailed:
			return receipt, fmt.Errorf("%w: %s reverted in block %s", ErrTransaction, hash.Hex(), receipt.BlockNumber)
		case receipt != nil:
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s not mined: %w", ErrTransaction, hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func parseAccount(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" || !common.IsHexAddress(s) {
		return common.Address{}, ErrNoAccount
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, ErrNoAccount
	}
	return addr, nil
}

func classifySend(err error) error {
	switch {
	case errors.Is(err, provider.ErrRejected):
		return fmt.Errorf("%w: %w", ErrUserRejected, err)
	case errors.Is(err, provider.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	case errors.Is(err, provider.ErrUnknownAccount):
		return fmt.Errorf("%w: %w", ErrNoAccount, err)
	default:
		return fmt.Errorf("%w: %w", ErrTransaction, err)
	}
}
