package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/contract"
	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/Mohsinsiddi/tokenapp/internal/rpc"
	"github.com/Mohsinsiddi/tokenapp/internal/token"
	"github.com/Mohsinsiddi/tokenapp/internal/view"
	"github.com/Mohsinsiddi/tokenapp/internal/wallet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// reasonError shows the user-facing reason for a token error while keeping
// the wrapped error for errors.Is.
type reasonError struct{ err error }

func (e reasonError) Error() string { return token.Reason(e.err) }
func (e reasonError) Unwrap() error { return e.err }

// userError wraps errors from the token layer. Others pass through.
func userError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range []error{
		token.ErrProviderUnavailable, token.ErrContractCall, token.ErrInvalidAmount,
		token.ErrUserRejected, token.ErrTransaction, token.ErrNoAccount, token.ErrInvalidAddress,
	} {
		if errors.Is(err, target) {
			return reasonError{err: err}
		}
	}
	return err
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
// The OS keychain is only opened when withKeys is set.
func newWalletManager(withKeys bool) (*wallet.Manager, error) {
	opts := []wallet.Option{wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath()))}
	if withKeys {
		ks, err := wallet.OpenKeystore(cfg.Dir())
		if err != nil {
			return nil, err
		}
		opts = append(opts, wallet.WithKeyStore(ks))
	}
	return wallet.NewManager(opts...), nil
}

// newOpener returns the provider factory for the configured backend. The
// approver is the keystore signing prompt; a nil approver signs without
// asking.
func newOpener(approver provider.Approver) (view.Opener, error) {
	var opts []provider.OpenOption
	if cfg.Provider == config.ProviderKeystore {
		mgr, err := newWalletManager(true)
		if err != nil {
			return nil, err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return nil, err
		}
		opts = append(opts, provider.WithWallets(mgr), provider.WithPicker(rpc.NewPicker(algo)))
		if approver != nil {
			opts = append(opts, provider.WithApprover(approver))
		}
	}
	return func(ctx context.Context) (provider.Provider, error) {
		return provider.Open(ctx, cfg, opts...)
	}, nil
}

// newClientFactory resolves the contract ABI once and binds a token client
// to every provider the controller opens.
func newClientFactory() (view.ClientFactory, abi.ABI, error) {
	parsed, err := contract.Resolve(cfg.ABI, cfg.ABIPath)
	if err != nil {
		return nil, abi.ABI{}, err
	}
	address := common.HexToAddress(cfg.ContractAddress)
	factory := func(p provider.Provider) *token.Client {
		return token.New(p, parsed, address,
			token.WithDecimals(cfg.TokenDecimals),
			token.WithSymbol(cfg.TokenSymbol))
	}
	return factory, parsed, nil
}

// newController validates the config and wires a view controller.
func newController(approver provider.Approver, wait bool) (*view.Controller, abi.ABI, error) {
	if err := cfg.Validate(); err != nil {
		return nil, abi.ABI{}, fmt.Errorf("%w\n  Run 'tokenapp init' or 'tokenapp config set'", err)
	}
	open, err := newOpener(approver)
	if err != nil {
		return nil, abi.ABI{}, err
	}
	factory, parsed, err := newClientFactory()
	if err != nil {
		return nil, abi.ABI{}, err
	}
	ctrl := view.New(open, factory, view.Options{
		WaitForReceipt:       wait,
		RefreshAfterTransfer: cfg.RefreshAfterTransfer,
		ConfirmTimeout:       config.TxConfirmTimeout,
	})
	return ctrl, parsed, nil
}
