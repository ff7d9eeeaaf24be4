package ui

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/tokenapp/internal/contract"
	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompterConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(tc.input), &out)
		assert.Equal(t, tc.want, p.Confirm("Proceed?"), "input %q", tc.input)
		assert.Contains(t, out.String(), "[y/N]")
	}
}

func transferTx(t *testing.T) provider.PendingTx {
	t.Helper()
	parsed, err := contract.BuiltinABI("erc20")
	require.NoError(t, err)
	amount, _ := new(big.Int).SetString("2500000000000000000", 10)
	data, err := parsed.Pack("transfer", common.HexToAddress("0x2222222222222222222222222222222222222222"), amount)
	require.NoError(t, err)
	return provider.PendingTx{
		ChainID:   big.NewInt(31337),
		From:      common.HexToAddress("0x1111111111111111111111111111111111111111"),
		To:        common.HexToAddress("0x5e7e42f3B5eF5908B4b28ec494E51287f69736D2"),
		Data:      data,
		Nonce:     3,
		Gas:       60000,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
	}
}

func lookup(pairs [][2]string, key string) string {
	for _, p := range pairs {
		if p[0] == key {
			return p[1]
		}
	}
	return ""
}

func TestDescribeTxDecodesTransfer(t *testing.T) {
	parsed, err := contract.BuiltinABI("erc20")
	require.NoError(t, err)

	pairs := DescribeTx(transferTx(t), parsed, 18, "TKN")

	assert.Equal(t, "transfer(address,uint256)", lookup(pairs, "Method"))
	assert.Equal(t, "0x2222222222222222222222222222222222222222", lookup(pairs, "Recipient"))
	assert.Equal(t, "2.5 TKN", lookup(pairs, "Amount"))
	assert.Equal(t, "31337", lookup(pairs, "Chain ID"))
	assert.Equal(t, "3", lookup(pairs, "Nonce"))
	assert.Equal(t, "60000", lookup(pairs, "Gas limit"))
	assert.Equal(t, "0.00012 ETH", lookup(pairs, "Max fee"))
}

func TestDescribeTxUnknownCalldata(t *testing.T) {
	parsed, err := contract.BuiltinABI("erc20")
	require.NoError(t, err)

	tx := transferTx(t)
	tx.Data = []byte{0xde, 0xad, 0xbe, 0xef}
	pairs := DescribeTx(tx, parsed, 18, "TKN")

	assert.Empty(t, lookup(pairs, "Method"))
	assert.Empty(t, lookup(pairs, "Recipient"))
	assert.Equal(t, tx.To.Hex(), lookup(pairs, "Contract"))
}

func TestSigningPromptApproves(t *testing.T) {
	parsed, err := contract.BuiltinABI("erc20")
	require.NoError(t, err)

	var out bytes.Buffer
	s := NewSigningPrompt(NewPrompter(strings.NewReader("y\n"), &out), parsed, 18, "TKN")
	ok, err := s.Approve(context.Background(), transferTx(t))

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "Signature request")
	assert.Contains(t, out.String(), "2.5 TKN")
}

func TestSigningPromptDeclinesWithoutInput(t *testing.T) {
	parsed, err := contract.BuiltinABI("erc20")
	require.NoError(t, err)

	s := NewSigningPrompt(NewPrompter(strings.NewReader(""), &bytes.Buffer{}), parsed, 18, "TKN")
	ok, err := s.Approve(context.Background(), transferTx(t))

	require.NoError(t, err)
	assert.False(t, ok)
}
