package provider

import (
	"context"
	"testing"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenNone(t *testing.T) {
	for _, kind := range []string{config.ProviderNone, ""} {
		_, err := Open(context.Background(), &config.Config{Provider: kind})
		assert.ErrorIs(t, err, ErrUnavailable, "provider %q", kind)
	}
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Provider: "metamask"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenInjected(t *testing.T) {
	m := newRPCMock(t, map[string]any{"eth_chainId": "0x1"})

	p, err := Open(context.Background(), &config.Config{
		Provider:       config.ProviderInjected,
		WalletEndpoint: m.URL,
	})
	require.NoError(t, err)
	defer p.Close()
	assert.IsType(t, &Injected{}, p)
}

func TestOpenInjectedUnreachable(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{
		Provider:       config.ProviderInjected,
		WalletEndpoint: "http://127.0.0.1:19991",
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenKeystore(t *testing.T) {
	m := newRPCMock(t, nodeResponses())

	p, err := Open(context.Background(), &config.Config{
		Provider: config.ProviderKeystore,
		RPCURLs:  []string{m.URL},
	}, WithWallets(signingWallets(t)))
	require.NoError(t, err)
	defer p.Close()
	assert.IsType(t, &Keystore{}, p)
}

func TestOpenKeystoreNeedsURLs(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Provider: config.ProviderKeystore},
		WithWallets(signingWallets(t)))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenKeystoreNeedsWallets(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{
		Provider: config.ProviderKeystore,
		RPCURLs:  []string{"http://127.0.0.1:8545"},
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenKeystoreBadAlgorithm(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{
		Provider:     config.ProviderKeystore,
		RPCURLs:      []string{"http://a", "http://b"},
		RPCAlgorithm: "random",
	}, WithWallets(signingWallets(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "random")
}
