package provider

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/rpc"
	"github.com/Mohsinsiddi/tokenapp/internal/wallet"
	"github.com/zeromicro/go-zero/core/logx"
)

// OpenOption configures Open.
type OpenOption func(*openOptions)

type openOptions struct {
	wallets  *wallet.Manager
	approver Approver
	picker   *rpc.Picker
}

// WithWallets sets the wallet manager backing the keystore provider.
func WithWallets(m *wallet.Manager) OpenOption {
	return func(o *openOptions) { o.wallets = m }
}

// WithApprover sets the signing prompt used by the keystore provider.
func WithApprover(a Approver) OpenOption {
	return func(o *openOptions) { o.approver = a }
}

// WithPicker reuses a node picker across Opens, keeping its cached winner.
func WithPicker(p *rpc.Picker) OpenOption {
	return func(o *openOptions) { o.picker = p }
}

// Open returns the provider selected by cfg.Provider. Anything that leaves
// the app without a wallet yields ErrUnavailable.
func Open(ctx context.Context, cfg *config.Config, opts ...OpenOption) (Provider, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch cfg.Provider {
	case config.ProviderInjected:
		return DialInjected(ctx, cfg.WalletEndpoint)

	case config.ProviderKeystore:
		if len(cfg.RPCURLs) == 0 {
			return nil, fmt.Errorf("%w: no rpc_urls configured", ErrUnavailable)
		}
		if o.wallets == nil {
			return nil, fmt.Errorf("%w: keystore provider needs a wallet store", ErrUnavailable)
		}
		if o.picker == nil {
			algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
			if err != nil {
				return nil, err
			}
			o.picker = rpc.NewPicker(algo)
		}

		selectCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
		defer cancel()
		url, err := o.picker.Select(selectCtx, cfg.RPCURLs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		logx.WithContext(ctx).Debugf("keystore provider using node %s", url)
		return DialKeystore(ctx, url, o.wallets, o.approver)

	case config.ProviderNone, "":
		return nil, fmt.Errorf("%w: provider disabled in config", ErrUnavailable)

	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrUnavailable, cfg.Provider)
	}
}
