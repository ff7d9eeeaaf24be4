// Package provider brokers access to wallet accounts and the chain. It is
// the Go counterpart of a browser-injected wallet: it lists accounts, asks
// for account access, runs read-only calls and submits transactions signed
// on the user's behalf.
package provider

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Errors. Backends wrap these so callers can classify with errors.Is.
var (
	// ErrUnavailable means no wallet capability is present or reachable.
	ErrUnavailable = errors.New("wallet provider unavailable")
	// ErrRejected means the wallet's user declined the request.
	ErrRejected = errors.New("request rejected by user")
	// ErrUnknownAccount means the sender is not an account the wallet controls.
	ErrUnknownAccount = errors.New("account not managed by this wallet")
)

// TxRequest is a state-changing call to be signed by From. Nonce, gas and
// fees are the provider's business.
type TxRequest struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int // nil means zero
}

// Provider is a wallet-mediated connection to one chain.
type Provider interface {
	// RequestAccounts asks the wallet for account access (eth_requestAccounts).
	// It may block on a human approving the connection.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts lists the accounts already exposed (eth_accounts).
	Accounts(ctx context.Context) ([]common.Address, error)
	// Call executes a read-only call against the latest block.
	Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	// SendTransaction signs req as req.From and broadcasts it. It returns once
	// the wallet has accepted the transaction, not when it is mined. It may
	// block indefinitely on the signing prompt.
	SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error)
	// TransactionReceipt returns the receipt, or nil, nil while pending.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	// Close releases the connection. The provider is unusable afterwards.
	Close()
}
