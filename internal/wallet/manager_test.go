package wallet_test

import (
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/tokenapp/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0, never fund on mainnet.
const (
	testPrivKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestAddWatchOnlyWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	err := mgr.AddWatchOnly("mywallet", "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)

	w, err := mgr.Get("mywallet")
	require.NoError(t, err)
	assert.Equal(t, "mywallet", w.Name)
	assert.Equal(t, wallet.TypeWatchOnly, w.Type)
	assert.False(t, w.CanSign())
	assert.NotEmpty(t, w.CreatedAt)
}

func TestAddWatchOnlyRejectsBadAddress(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	err := mgr.AddWatchOnly("bad", "0x123")
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestAddDuplicateWalletErrors(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	require.NoError(t, mgr.AddWatchOnly("dup", testSignerAddr))
	assert.ErrorIs(t, mgr.AddWatchOnly("dup", testSignerAddr), wallet.ErrWalletExists)
	assert.ErrorIs(t, mgr.AddWithKey("dup", testPrivKeyHex), wallet.ErrWalletExists)
}

func TestAddSigningWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	require.NoError(t, mgr.AddWithKey("signer", testPrivKeyHex))

	w, err := mgr.Get("signer")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Equal(t, testSignerAddr, w.Address)
	assert.Equal(t, "tokenapp.signer", w.KeyRef)

	key, err := mgr.KeyStore().Retrieve(w.KeyRef)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex[2:], key, "keys are stored without the 0x prefix")
}

func TestInvalidPrivateKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	err := mgr.AddWithKey("bad", "not-a-valid-key")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)
	assert.Empty(t, mgr.List())
}

func TestListWalletsSorted(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWatchOnly("charlie", "0x3333333333333333333333333333333333333333"))
	require.NoError(t, mgr.AddWatchOnly("alice", "0x1111111111111111111111111111111111111111"))
	require.NoError(t, mgr.AddWatchOnly("bob", "0x2222222222222222222222222222222222222222"))

	wallets := mgr.List()
	require.Len(t, wallets, 3)
	assert.Equal(t, "alice", wallets[0].Name)
	assert.Equal(t, "bob", wallets[1].Name)
	assert.Equal(t, "charlie", wallets[2].Name)
}

func TestRemoveWalletDeletesKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWithKey("w1", testPrivKeyHex))
	w, _ := mgr.Get("w1")

	require.NoError(t, mgr.Remove("w1"))

	_, err := mgr.Get("w1")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
	_, err = mgr.KeyStore().Retrieve(w.KeyRef)
	assert.ErrorIs(t, err, wallet.ErrKeyNotFound)
}

func TestRemoveNonExistentWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.ErrorIs(t, mgr.Remove("ghost"), wallet.ErrWalletNotFound)
}

func TestSetDefault(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWatchOnly("a", "0x1111111111111111111111111111111111111111"))
	require.NoError(t, mgr.AddWatchOnly("b", "0x2222222222222222222222222222222222222222"))

	require.NoError(t, mgr.SetDefault("b"))
	require.NotNil(t, mgr.Default())
	assert.Equal(t, "b", mgr.Default().Name)

	require.NoError(t, mgr.SetDefault("a"))
	assert.Equal(t, "a", mgr.Default().Name)

	assert.ErrorIs(t, mgr.SetDefault("zzz"), wallet.ErrWalletNotFound)
}

func TestDefaultSingleWalletFallback(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.Nil(t, mgr.Default())

	require.NoError(t, mgr.AddWatchOnly("only", testSignerAddr))
	require.NotNil(t, mgr.Default())
	assert.Equal(t, "only", mgr.Default().Name)
}

func TestSignersDefaultFirst(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWatchOnly("aaa-watch", "0x1111111111111111111111111111111111111111"))
	require.NoError(t, mgr.AddWithKey("bbb", "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"))
	require.NoError(t, mgr.AddWithKey("zzz", testPrivKeyHex))
	require.NoError(t, mgr.SetDefault("zzz"))

	signers := mgr.Signers()
	require.Len(t, signers, 2, "watch-only wallets are not signers")
	assert.Equal(t, "zzz", signers[0].Name)
	assert.Equal(t, "bbb", signers[1].Name)
}

func TestByAddressCaseInsensitive(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWatchOnly("w", testSignerAddr))

	w, err := mgr.ByAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.NoError(t, err)
	assert.Equal(t, "w", w.Name)

	_, err = mgr.ByAddress("0x0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestManagerPersistsThroughJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	ks := wallet.NewInMemoryKeystore()

	mgr := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeyStore(ks))
	require.NoError(t, mgr.AddWithKey("signer", testPrivKeyHex))
	require.NoError(t, mgr.SetDefault("signer"))

	reopened := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeyStore(ks))
	w := reopened.Default()
	require.NotNil(t, w)
	assert.Equal(t, testSignerAddr, w.Address)
	assert.True(t, w.CanSign())
}
