package provider

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/tokenapp/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat/Anvil test account #0.
const (
	signerKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	signerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// nodeResponses answers everything the keystore provider asks a node for.
func nodeResponses() map[string]any {
	return map[string]any{
		"eth_chainId":              "0xaa36a7",
		"eth_getTransactionCount":  "0x5",
		"eth_estimateGas":          "0x8d5c",
		"eth_maxPriorityFeePerGas": "0x3b9aca00",
		"eth_getBlockByNumber":     headerJSON("0x77359400"),
		"eth_sendRawTransaction":   txHash,
	}
}

func signingWallets(t *testing.T) *wallet.Manager {
	t.Helper()
	t.Setenv(wallet.EnvKey, "")
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWithKey("main", signerKey))
	require.NoError(t, mgr.AddWatchOnly("watch", aliceHex))
	return mgr
}

func dialNode(t *testing.T, responses map[string]any, approver Approver) (*Keystore, *rpcMock) {
	t.Helper()
	m := newRPCMock(t, responses)
	p, err := DialKeystore(context.Background(), m.URL, signingWallets(t), approver)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p, m
}

func transferReq() TxRequest {
	return TxRequest{
		From: common.HexToAddress(signerAddr),
		To:   common.HexToAddress(tokenHex),
		Data: []byte{0xa9, 0x05, 0x9c, 0xbb},
	}
}

// broadcastTx decodes the raw transaction the provider sent to the node.
func broadcastTx(t *testing.T, m *rpcMock) *types.Transaction {
	t.Helper()
	calls := m.called("eth_sendRawTransaction")
	require.Len(t, calls, 1)
	var raw hexutil.Bytes
	require.NoError(t, json.Unmarshal(calls[0].Params[0], &raw))
	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(raw))
	return tx
}

func TestKeystoreAccountsOnlySigners(t *testing.T) {
	p, _ := dialNode(t, nodeResponses(), nil)

	accounts, err := p.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(signerAddr)}, accounts)
}

func TestKeystoreSendTransaction(t *testing.T) {
	var seen PendingTx
	approver := ApproverFunc(func(_ context.Context, tx PendingTx) (bool, error) {
		seen = tx
		return true, nil
	})
	p, m := dialNode(t, nodeResponses(), approver)

	hash, err := p.SendTransaction(context.Background(), transferReq())
	require.NoError(t, err)

	tx := broadcastTx(t, m)
	assert.Equal(t, tx.Hash(), hash)
	assert.Equal(t, uint64(5), tx.Nonce())
	assert.Equal(t, uint64(0x8d5c), tx.Gas())
	assert.Equal(t, big.NewInt(1e9), tx.GasTipCap())
	// 2 * base fee (2 gwei) + tip (1 gwei).
	assert.Equal(t, big.NewInt(5e9), tx.GasFeeCap())
	assert.Equal(t, common.HexToAddress(tokenHex), *tx.To())
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, tx.Data())

	from, err := types.Sender(types.NewLondonSigner(big.NewInt(11155111)), tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(signerAddr), from)

	assert.Equal(t, uint64(5), seen.Nonce)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(0x8d5c), big.NewInt(5e9)), seen.MaxFee())
}

func TestKeystoreDeclinedIsRejected(t *testing.T) {
	approver := ApproverFunc(func(context.Context, PendingTx) (bool, error) { return false, nil })
	p, m := dialNode(t, nodeResponses(), approver)

	_, err := p.SendTransaction(context.Background(), transferReq())
	assert.ErrorIs(t, err, ErrRejected)
	assert.Empty(t, m.called("eth_sendRawTransaction"), "nothing is broadcast after a decline")
}

func TestKeystoreApproverError(t *testing.T) {
	boom := errors.New("tty closed")
	approver := ApproverFunc(func(context.Context, PendingTx) (bool, error) { return false, boom })
	p, m := dialNode(t, nodeResponses(), approver)

	_, err := p.SendTransaction(context.Background(), transferReq())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.called("eth_sendRawTransaction"))
}

func TestKeystoreUnknownSender(t *testing.T) {
	p, m := dialNode(t, nodeResponses(), nil)

	req := transferReq()
	req.From = common.HexToAddress(aliceHex) // watch-only
	_, err := p.SendTransaction(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.Empty(t, m.called("eth_getTransactionCount"))
}

func TestKeystoreGasEstimateFallback(t *testing.T) {
	responses := nodeResponses()
	responses["eth_estimateGas"] = rpcErr{-32000, "execution reverted"}
	p, m := dialNode(t, responses, nil)

	_, err := p.SendTransaction(context.Background(), transferReq())
	require.NoError(t, err)
	assert.Equal(t, uint64(60_000), broadcastTx(t, m).Gas())
}

func TestKeystoreLegacyChainFees(t *testing.T) {
	responses := nodeResponses()
	responses["eth_getBlockByNumber"] = headerJSON("")
	p, m := dialNode(t, responses, nil)

	_, err := p.SendTransaction(context.Background(), transferReq())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2e9), broadcastTx(t, m).GasFeeCap())
}

func TestKeystoreBroadcastFailure(t *testing.T) {
	responses := nodeResponses()
	responses["eth_sendRawTransaction"] = rpcErr{-32000, "nonce too low"}
	p, _ := dialNode(t, responses, nil)

	_, err := p.SendTransaction(context.Background(), transferReq())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonce too low")
	assert.NotErrorIs(t, err, ErrRejected)
}

func TestKeystoreCall(t *testing.T) {
	responses := nodeResponses()
	responses["eth_call"] = "0x000000000000000000000000000000000000000000000000000000000000002a"
	p, _ := dialNode(t, responses, nil)

	to := common.HexToAddress(tokenHex)
	out, err := p.Call(context.Background(), ethereum.CallMsg{To: &to, Data: []byte{0x70, 0xa0, 0x82, 0x31}})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), new(big.Int).SetBytes(out))
}

func TestKeystoreReceipt(t *testing.T) {
	responses := nodeResponses()
	responses["eth_getTransactionReceipt"] = nil
	p, m := dialNode(t, responses, nil)

	r, err := p.TransactionReceipt(context.Background(), common.HexToHash(txHash))
	require.NoError(t, err)
	assert.Nil(t, r, "pending is nil, nil")

	m.mu.Lock()
	m.responses["eth_getTransactionReceipt"] = receiptJSON(txHash, "0x0")
	m.mu.Unlock()

	r, err = p.TransactionReceipt(context.Background(), common.HexToHash(txHash))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, types.ReceiptStatusFailed, r.Status)
}

func TestDialKeystoreUnreachable(t *testing.T) {
	_, err := DialKeystore(context.Background(), "http://127.0.0.1:19992", signingWallets(t), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}
