package provider

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/zeromicro/go-zero/core/logx"
)

// EIP-1193 provider error codes.
const (
	codeUserRejected      = 4001
	codeUnauthorized      = 4100
	codeDisconnected      = 4900
	codeChainDisconnected = 4901
)

// Injected talks to an EIP-1193 wallet (Frame, a browser bridge, a dev
// node with unlocked accounts) over JSON-RPC. The wallet owns the keys and
// fills nonce, gas and fees itself.
type Injected struct {
	client   *rpc.Client
	endpoint string
}

// DialInjected connects to the wallet at endpoint and checks it answers.
func DialInjected(ctx context.Context, endpoint string) (*Injected, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: no wallet endpoint configured", ErrUnavailable)
	}
	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %v", ErrUnavailable, endpoint, err)
	}

	var id hexutil.Big
	if err := client.CallContext(ctx, &id, "eth_chainId"); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s did not answer: %v", ErrUnavailable, endpoint, err)
	}

	logx.WithContext(ctx).Debugw("wallet connected",
		logx.Field("endpoint", endpoint),
		logx.Field("chain_id", id.ToInt().String()))
	return &Injected{client: client, endpoint: endpoint}, nil
}

func (p *Injected) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

func (p *Injected) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

func (p *Injected) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	arg := map[string]any{"data": hexutil.Bytes(msg.Data)}
	if msg.To != nil {
		arg["to"] = msg.To
	}
	if msg.From != (common.Address{}) {
		arg["from"] = msg.From
	}

	var out hexutil.Bytes
	if err := p.client.CallContext(ctx, &out, "eth_call", arg, "latest"); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (p *Injected) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	arg := map[string]any{
		"from": req.From,
		"to":   req.To,
		"data": hexutil.Bytes(req.Data),
	}
	if req.Value != nil && req.Value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(req.Value)
	}

	logx.WithContext(ctx).Debugw("awaiting wallet signature",
		logx.Field("from", req.From.Hex()),
		logx.Field("to", req.To.Hex()))

	var hash common.Hash
	if err := p.client.CallContext(ctx, &hash, "eth_sendTransaction", arg); err != nil {
		return common.Hash{}, classify(err)
	}
	return hash, nil
}

func (p *Injected) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	if err := p.client.CallContext(ctx, &receipt, "eth_getTransactionReceipt", hash); err != nil {
		return nil, classify(err)
	}
	return receipt, nil
}

func (p *Injected) Close() {
	p.client.Close()
}

// classify maps wallet and transport failures onto the package errors.
func classify(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejected:
			return fmt.Errorf("%w: %v", ErrRejected, err)
		case codeUnauthorized, codeDisconnected, codeChainDisconnected:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
