package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/zeromicro/go-zero/core/logx"
)

// PendingTx is a fully priced transaction waiting for the user's approval.
type PendingTx struct {
	ChainID   *big.Int
	From      common.Address
	To        common.Address
	Data      []byte
	Value     *big.Int
	Nonce     uint64
	Gas       uint64
	GasTipCap *big.Int
	GasFeeCap *big.Int
}

// MaxFee is the most the transaction can cost in wei: gas * fee cap.
func (p PendingTx) MaxFee() *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(p.Gas), p.GasFeeCap)
}

// Approver is the signing prompt. It returns false when the user declines.
type Approver interface {
	Approve(ctx context.Context, tx PendingTx) (bool, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, tx PendingTx) (bool, error)

func (f ApproverFunc) Approve(ctx context.Context, tx PendingTx) (bool, error) {
	return f(ctx, tx)
}

// Keystore is a local wallet: keys live in the OS keychain through the
// wallet manager, chain access goes through a regular node.
type Keystore struct {
	client   *ethclient.Client
	wallets  *wallet.Manager
	approver Approver
	chainID  *big.Int
}

// DialKeystore connects to the node at url. A nil approver approves
// everything.
func DialKeystore(ctx context.Context, url string, wallets *wallet.Manager, approver Approver) (*Keystore, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %v", ErrUnavailable, url, err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s did not answer: %v", ErrUnavailable, url, err)
	}
	if approver == nil {
		approver = ApproverFunc(func(context.Context, PendingTx) (bool, error) { return true, nil })
	}
	return &Keystore{client: client, wallets: wallets, approver: approver, chainID: chainID}, nil
}

// RequestAccounts has nothing to ask for locally; access is implied by the
// key being in the keychain.
func (p *Keystore) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return p.Accounts(ctx)
}

// Accounts lists signing wallets, the default one first.
func (p *Keystore) Accounts(context.Context) ([]common.Address, error) {
	signers := p.wallets.Signers()
	out := make([]common.Address, 0, len(signers))
	for _, w := range signers {
		out = append(out, common.HexToAddress(w.Address))
	}
	return out, nil
}

func (p *Keystore) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return p.client.CallContract(ctx, msg, nil)
}

func (p *Keystore) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	w, err := p.wallets.ByAddress(req.From.Hex())
	if err != nil || !w.CanSign() {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrUnknownAccount, req.From.Hex())
	}

	pending, err := p.price(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}

	ok, err := p.approver.Approve(ctx, pending)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing prompt: %w", err)
	}
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: transaction declined at signing prompt", ErrRejected)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   pending.ChainID,
		Nonce:     pending.Nonce,
		GasTipCap: pending.GasTipCap,
		GasFeeCap: pending.GasFeeCap,
		Gas:       pending.Gas,
		To:        &pending.To,
		Value:     pending.Value,
		Data:      pending.Data,
	})

	signed, err := wallet.NewSigner(w, p.wallets.KeyStore()).SignTx(tx, p.chainID)
	if err != nil {
		return common.Hash{}, err
	}
	if err := p.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}

	logx.WithContext(ctx).Infow("transaction broadcast",
		logx.Field("hash", signed.Hash().Hex()),
		logx.Field("from", req.From.Hex()),
		logx.Field("nonce", pending.Nonce))
	return signed.Hash(), nil
}

// price fills nonce, gas and EIP-1559 fees for req.
func (p *Keystore) price(ctx context.Context, req TxRequest) (PendingTx, error) {
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	pending := PendingTx{
		ChainID: p.chainID,
		From:    req.From,
		To:      req.To,
		Data:    req.Data,
		Value:   value,
	}

	nonce, err := p.client.PendingNonceAt(ctx, req.From)
	if err != nil {
		return PendingTx{}, fmt.Errorf("getting nonce: %w", err)
	}
	pending.Nonce = nonce

	to := req.To
	gas, err := p.client.EstimateGas(ctx, ethereum.CallMsg{From: req.From, To: &to, Data: req.Data, Value: value})
	if err != nil {
		logx.WithContext(ctx).Infof("gas estimate failed, using %d: %v", config.GasLimitERC20Transfer, err)
		gas = config.GasLimitERC20Transfer
	}
	pending.Gas = gas

	tip, err := p.client.SuggestGasTipCap(ctx)
	if err != nil {
		return PendingTx{}, fmt.Errorf("getting gas tip: %w", err)
	}
	head, err := p.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return PendingTx{}, fmt.Errorf("getting latest header: %w", err)
	}
	pending.GasTipCap = tip
	if head.BaseFee != nil {
		// Room for the base fee to double before the tx is priced out.
		pending.GasFeeCap = new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)
	} else {
		pending.GasFeeCap = new(big.Int).Mul(tip, big.NewInt(2))
	}
	return pending, nil
}

func (p *Keystore) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := p.client.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	return receipt, err
}

func (p *Keystore) Close() {
	p.client.Close()
}
