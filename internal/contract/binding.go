package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNoCode is returned when a call comes back empty, which is what an
// address without contract code answers.
var ErrNoCode = errors.New("no contract code at given address")

// Backend is the part of a provider a Binding needs.
type Backend interface {
	Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	SendTransaction(ctx context.Context, req provider.TxRequest) (common.Hash, error)
}

// Binding is a typed handle on a deployed contract: its address, its
// interface description, and the backend used to reach it.
type Binding struct {
	address common.Address
	abi     abi.ABI
	backend Backend
}

// Bind creates a Binding.
func Bind(backend Backend, parsed abi.ABI, address common.Address) *Binding {
	return &Binding{address: address, abi: parsed, backend: backend}
}

// Address returns the contract address.
func (b *Binding) Address() common.Address {
	return b.address
}

// Pack encodes a call to method with args.
func (b *Binding) Pack(method string, args ...any) ([]byte, error) {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	return data, nil
}

// Call invokes a read-only method and returns its decoded outputs.
func (b *Binding) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := b.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	to := b.address
	out, err := b.backend.Call(ctx, ethereum.CallMsg{To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	if len(out) == 0 && len(b.abi.Methods[method].Outputs) > 0 {
		return nil, fmt.Errorf("calling %s on %s: %w", method, b.address.Hex(), ErrNoCode)
	}

	values, err := b.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", method, err)
	}
	return values, nil
}

// Transact invokes a state-changing method signed by from and returns the
// transaction hash once the backend has accepted it.
func (b *Binding) Transact(ctx context.Context, from common.Address, method string, args ...any) (common.Hash, error) {
	data, err := b.Pack(method, args...)
	if err != nil {
		return common.Hash{}, err
	}
	return b.backend.SendTransaction(ctx, provider.TxRequest{
		From: from,
		To:   b.address,
		Data: data,
	})
}
