package wallet_test

import (
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/tokenapp/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dynamicTx() *types.Transaction {
	to := common.HexToAddress("0x5e7e42f3B5eF5908B4b28ec494E51287f69736D2")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(11155111),
		Nonce:     7,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
		Gas:       60_000,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      []byte{0xa9, 0x05, 0x9c, 0xbb},
	})
}

func TestSignTxRecoversSender(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWithKey("signer", testPrivKeyHex))
	w, _ := mgr.Get("signer")

	s := wallet.NewSigner(w, mgr.KeyStore())
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())

	chainID := big.NewInt(11155111)
	signed, err := s.SignTx(dynamicTx(), chainID)
	require.NoError(t, err)

	from, err := types.Sender(types.NewLondonSigner(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), from)
	assert.Equal(t, uint64(7), signed.Nonce())
}

func TestSignTxWatchOnlyError(t *testing.T) {
	w := &wallet.Wallet{Name: "watcher", Address: testSignerAddr, Type: wallet.TypeWatchOnly}
	s := wallet.NewSigner(w, wallet.NewInMemoryKeystore())

	_, err := s.SignTx(dynamicTx(), big.NewInt(1))
	assert.ErrorIs(t, err, wallet.ErrWatchOnly)
}

func TestSignTxKeyNotFound(t *testing.T) {
	w := &wallet.Wallet{Name: "missing", Address: testSignerAddr, Type: wallet.TypeSigning, KeyRef: "tokenapp.missing"}
	s := wallet.NewSigner(w, wallet.NewInMemoryKeystore())

	_, err := s.SignTx(dynamicTx(), big.NewInt(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, wallet.ErrKeyNotFound)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignTxKeyAddressMismatch(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	ref, _ := ks.Store("w", testPrivKeyHex)
	w := &wallet.Wallet{Name: "w", Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", Type: wallet.TypeSigning, KeyRef: ref}

	_, err := wallet.NewSigner(w, ks).SignTx(dynamicTx(), big.NewInt(1))
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)
}

func TestSignTxCorruptKey(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	ref, _ := ks.Store("w", "zz-not-hex")
	w := &wallet.Wallet{Name: "w", Address: testSignerAddr, Type: wallet.TypeSigning, KeyRef: ref}

	_, err := wallet.NewSigner(w, ks).SignTx(dynamicTx(), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing private key")
}
