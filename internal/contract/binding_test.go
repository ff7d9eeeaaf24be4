package contract_test

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/tokenapp/internal/contract"
	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records what the binding sends and answers with canned data.
type fakeBackend struct {
	callOut []byte
	callErr error
	sendErr error

	lastCall ethereum.CallMsg
	lastTx   provider.TxRequest
	calls    int
	sends    int
}

func (f *fakeBackend) Call(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	f.calls++
	f.lastCall = msg
	return f.callOut, f.callErr
}

func (f *fakeBackend) SendTransaction(_ context.Context, req provider.TxRequest) (common.Hash, error) {
	f.sends++
	f.lastTx = req
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	return common.HexToHash("0xabc"), nil
}

var (
	tokenAddr = common.HexToAddress("0x5e7e42f3B5eF5908B4b28ec494E51287f69736D2")
	alice     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob       = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func erc20Binding(t *testing.T, b contract.Backend) *contract.Binding {
	t.Helper()
	parsed, err := contract.BuiltinABI("erc20")
	require.NoError(t, err)
	return contract.Bind(b, parsed, tokenAddr)
}

func TestCallBalanceOf(t *testing.T) {
	be := &fakeBackend{callOut: math.U256Bytes(big.NewInt(42))}
	b := erc20Binding(t, be)

	out, err := b.Call(context.Background(), contract.MethodBalanceOf, alice)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, big.NewInt(42), out[0])

	require.NotNil(t, be.lastCall.To)
	assert.Equal(t, tokenAddr, *be.lastCall.To)
	assert.Equal(t,
		"70a08231"+"0000000000000000000000001111111111111111111111111111111111111111",
		hex.EncodeToString(be.lastCall.Data))
}

func TestCallEmptyResultMeansNoCode(t *testing.T) {
	b := erc20Binding(t, &fakeBackend{callOut: nil})
	_, err := b.Call(context.Background(), contract.MethodBalanceOf, alice)
	assert.ErrorIs(t, err, contract.ErrNoCode)
}

func TestCallBackendError(t *testing.T) {
	boom := errors.New("connection refused")
	b := erc20Binding(t, &fakeBackend{callErr: boom})
	_, err := b.Call(context.Background(), contract.MethodBalanceOf, alice)
	assert.ErrorIs(t, err, boom)
}

func TestCallUnknownMethod(t *testing.T) {
	be := &fakeBackend{}
	b := erc20Binding(t, be)
	_, err := b.Call(context.Background(), "mint", alice)
	assert.Error(t, err)
	assert.Zero(t, be.calls, "nothing is sent when encoding fails")
}

func TestTransactEncodesTransfer(t *testing.T) {
	be := &fakeBackend{}
	b := erc20Binding(t, be)

	amount, _ := new(big.Int).SetString("2500000000000000000", 10)
	hash, err := b.Transact(context.Background(), alice, contract.MethodTransfer, bob, amount)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xabc"), hash)

	assert.Equal(t, alice, be.lastTx.From)
	assert.Equal(t, tokenAddr, be.lastTx.To)
	assert.Nil(t, be.lastTx.Value)
	assert.Equal(t,
		"a9059cbb"+
			"0000000000000000000000002222222222222222222222222222222222222222"+
			"00000000000000000000000000000000000000000000000022b1c8c1227a0000",
		hex.EncodeToString(be.lastTx.Data))
}

func TestTransactBadArgsNotSent(t *testing.T) {
	be := &fakeBackend{}
	b := erc20Binding(t, be)
	_, err := b.Transact(context.Background(), alice, contract.MethodTransfer, bob, "lots")
	assert.Error(t, err)
	assert.Zero(t, be.sends)
}

func TestTransactPropagatesRejection(t *testing.T) {
	b := erc20Binding(t, &fakeBackend{sendErr: provider.ErrRejected})
	_, err := b.Transact(context.Background(), alice, contract.MethodTransfer, bob, big.NewInt(1))
	assert.ErrorIs(t, err, provider.ErrRejected)
}

func TestAddress(t *testing.T) {
	b := erc20Binding(t, &fakeBackend{})
	assert.Equal(t, tokenAddr, b.Address())
}
